package domain

import "time"

// Unit is a rentable space belonging to a property. Ownership points from
// unit to listing (nullable), so "no listing" needs no sentinel record.
// Units and leases are owned by other subsystems and consumed read-only here.
type Unit struct {
	ID           string
	OrgID        string
	PropertyName string
	Label        string
	MarketRent   float64
	ListingID    *string
}

// LeaseStatus is the lifecycle state of a lease, as reported by the lease
// subsystem. Only LeaseActive matters to listing guards.
type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "active"
	LeaseEnded      LeaseStatus = "ended"
	LeaseTerminated LeaseStatus = "terminated"
)

// Lease is the read model of a tenancy agreement on a unit. At most one
// lease per unit is active at a time; the lease subsystem enforces that.
type Lease struct {
	ID        string
	UnitID    string
	Status    LeaseStatus
	StartDate time.Time
	EndDate   *time.Time
}
