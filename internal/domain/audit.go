package domain

import "time"

// AuditAction tags what kind of transition an audit entry records.
type AuditAction string

const (
	AuditListingCreated     AuditAction = "listing_created"
	AuditStatusChanged      AuditAction = "status_changed"
	AuditListingRemoved     AuditAction = "listing_removed"
	AuditBulkListingCreated AuditAction = "bulk_listing_created"
	AuditMaintenanceStarted AuditAction = "maintenance_started"
	AuditMaintenanceEnded   AuditAction = "maintenance_ended"
	AuditDecisionOffline    AuditAction = "listing_decision_offline"
	AuditDecisionKeepOnline AuditAction = "listing_decision_keep_online"
)

// AuditEntry is an immutable record of one listing transition. Entries are
// append-only: never updated, never deleted, even when a bulk rollback
// undoes the transition they describe.
type AuditEntry struct {
	ID             string
	UnitID         string
	ListingID      *string
	Action         AuditAction
	PreviousStatus Status
	NewStatus      Status
	ActorID        string
	Timestamp      time.Time
	// Changes carries a free-form JSON payload; maintenance entries use it
	// to stash the pre-maintenance status for later restore.
	Changes string
}

// StatisticsFilter narrows which audit entries a statistics query aggregates.
type StatisticsFilter struct {
	UnitID  string
	ActorID string
	Action  AuditAction
	Since   *time.Time
	Until   *time.Time
}

// TimelineBucket is one day's entry count in the statistics timeline.
type TimelineBucket struct {
	Day   string
	Count int
}

// Statistics is an aggregate view over the audit log. Every figure is
// derived from recorded entries alone, so recomputing from the log always
// reconciles with any cached copy.
type Statistics struct {
	TotalEntries    int
	ActionBreakdown map[AuditAction]int
	StatusBreakdown map[Status]int
	UserActivity    map[string]int
	Timeline        []TimelineBucket
}
