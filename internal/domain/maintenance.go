package domain

import (
	"strings"
	"time"
)

// MaintenanceModeConfig describes a request to take a unit's listing
// offline for repair work. Request scoped, never persisted; the durable
// trace lives in the audit trail.
type MaintenanceModeConfig struct {
	UnitID           string
	StartDate        time.Time
	Reason           string
	EstimatedEndDate *time.Time
	RequestID        string
	NotifyTenants    bool
	AutoRestore      bool
}

// MaintenanceListingStatus answers "is this unit's listing hidden for
// maintenance, and can we put it back".
type MaintenanceListingStatus struct {
	UnitID           string
	IsInMaintenance  bool
	RequestID        string
	CanRestore       bool
	EstimatedEndDate *time.Time
}

// TicketPriority is the urgency of a maintenance ticket, as reported by
// the maintenance subsystem.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// Ticket is the read model of a maintenance request from the external
// ticket subsystem.
type Ticket struct {
	ID          string
	UnitID      string
	Priority    TicketPriority
	Title       string
	Description string
}

// OfflineKeywords flags work that makes a unit unrentable while it runs.
// Deliberately a heuristic keyword list; tune it, don't replace it with
// anything cleverer.
var OfflineKeywords = []string{
	"offline",
	"uninhabitable",
	"renovation",
	"remodel",
	"electrical work",
	"plumbing replacement",
	"water damage",
	"mold",
	"asbestos",
	"structural",
	"gas leak",
	"no heat",
	"no water",
}

// RequiresOfflineMode decides whether a ticket moving to "in progress"
// should take the unit's listing off the marketplace: high-urgency work
// always does, otherwise the ticket text is scanned for offline keywords.
func RequiresOfflineMode(t Ticket, keywords []string) bool {
	if t.Priority == PriorityHigh || t.Priority == PriorityUrgent {
		return true
	}
	text := strings.ToLower(t.Title + " " + t.Description)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
