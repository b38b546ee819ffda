package domain

// Eligibility is the derived answer to "may this unit accept tenant
// applications right now". Never persisted; a pure function of the current
// listing and active-lease state, so repeated evaluation on unchanged
// state yields identical results.
type Eligibility struct {
	UnitID        string
	IsEligible    bool
	ListingStatus Status
	Reason        string
}
