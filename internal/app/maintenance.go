package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/listiq/internal/domain"
)

// Ticket statuses from the external maintenance subsystem that the
// coordinator reacts to.
const (
	TicketInProgress = "in_progress"
	TicketCompleted  = "completed"
	TicketCancelled  = "cancelled"
)

// MaintenanceCoordinator hides and restores listings around repair work.
// The pre-maintenance status travels in the audit trail's changes payload,
// so ending maintenance restores exactly the prior value.
type MaintenanceCoordinator struct {
	listings  domain.ListingRepository
	units     domain.UnitRepository
	audit     domain.AuditRepository
	publisher domain.EventPublisher
	keywords  []string
}

// NewMaintenanceCoordinator creates a coordinator. A nil keyword list falls
// back to domain.OfflineKeywords.
func NewMaintenanceCoordinator(
	listings domain.ListingRepository,
	units domain.UnitRepository,
	audit domain.AuditRepository,
	publisher domain.EventPublisher,
	keywords []string,
) *MaintenanceCoordinator {
	if keywords == nil {
		keywords = domain.OfflineKeywords
	}
	return &MaintenanceCoordinator{
		listings:  listings,
		units:     units,
		audit:     audit,
		publisher: publisher,
		keywords:  keywords,
	}
}

// maintenanceChanges is the audit Changes payload for maintenance entries.
type maintenanceChanges struct {
	PreviousStatus   string `json:"previousStatus,omitempty"`
	RestoredStatus   string `json:"restoredStatus,omitempty"`
	RequestID        string `json:"requestId,omitempty"`
	Reason           string `json:"reason,omitempty"`
	EstimatedEndDate string `json:"estimatedEndDate,omitempty"`
	AutoRestore      bool   `json:"autoRestore,omitempty"`
}

// StartMaintenanceMode hides a unit's listing for repair work. Requires an
// existing listing; starting on a unit already in maintenance is a no-op
// success.
func (c *MaintenanceCoordinator) StartMaintenanceMode(ctx context.Context, cfg domain.MaintenanceModeConfig, actorID string) (domain.Listing, error) {
	listing, err := c.listings.GetByUnit(ctx, cfg.UnitID)
	if err != nil {
		return domain.Listing{}, err
	}

	if listing.Status == domain.StatusMaintenance {
		return listing, nil
	}

	changes := maintenanceChanges{
		PreviousStatus: string(listing.Status),
		RequestID:      cfg.RequestID,
		Reason:         cfg.Reason,
		AutoRestore:    cfg.AutoRestore,
	}
	if cfg.EstimatedEndDate != nil {
		changes.EstimatedEndDate = cfg.EstimatedEndDate.UTC().Format(time.RFC3339)
	}

	entry, err := newAuditEntry(cfg.UnitID, &listing.ID, domain.AuditMaintenanceStarted, listing.Status, domain.StatusMaintenance, actorID, changes)
	if err != nil {
		return domain.Listing{}, err
	}

	listing.Status = domain.StatusMaintenance
	listing.UpdatedAt = time.Now().UTC()

	if err := c.listings.UpdateStatus(ctx, listing, entry); err != nil {
		return domain.Listing{}, fmt.Errorf("entering maintenance mode: %w", err)
	}

	if cfg.NotifyTenants {
		publishEvent(ctx, c.publisher, domain.AuditMaintenanceStarted, listing)
	}

	return listing, nil
}

// EndMaintenanceMode restores a unit's listing after repair work. With no
// explicit restore status, the status captured at start time is restored.
// Ending on a unit not in maintenance is a no-op success.
func (c *MaintenanceCoordinator) EndMaintenanceMode(ctx context.Context, unitID, actorID string, restoreStatus *domain.Status, reason string) (domain.Listing, error) {
	listing, err := c.listings.GetByUnit(ctx, unitID)
	if err != nil {
		return domain.Listing{}, err
	}

	if listing.Status != domain.StatusMaintenance {
		return listing, nil
	}

	target := domain.StatusActive
	if restoreStatus != nil {
		if !domain.ValidStatus(*restoreStatus) {
			return domain.Listing{}, &domain.ValidationError{Field: "restoreStatus", Reason: "unknown status " + string(*restoreStatus)}
		}
		target = *restoreStatus
	} else if prior, ok := c.priorStatus(ctx, unitID); ok {
		target = prior
	}

	// Restoring to active obeys the same lease guard as any other move into active.
	if target == domain.StatusActive {
		lease, err := c.units.ActiveLease(ctx, unitID)
		if err != nil {
			return domain.Listing{}, fmt.Errorf("checking lease: %w", err)
		}
		if lease != nil {
			return domain.Listing{}, &domain.ActiveLeaseError{UnitID: unitID, LeaseID: lease.ID}
		}
	}

	entry, err := newAuditEntry(unitID, &listing.ID, domain.AuditMaintenanceEnded, domain.StatusMaintenance, target, actorID, maintenanceChanges{
		RestoredStatus: string(target),
		Reason:         reason,
	})
	if err != nil {
		return domain.Listing{}, err
	}

	listing.Status = target
	listing.UpdatedAt = time.Now().UTC()

	if err := c.listings.UpdateStatus(ctx, listing, entry); err != nil {
		return domain.Listing{}, fmt.Errorf("ending maintenance mode: %w", err)
	}

	publishEvent(ctx, c.publisher, domain.AuditMaintenanceEnded, listing)
	return listing, nil
}

// HandleTicketStatusChange reacts to maintenance ticket events. A ticket
// moving to in-progress takes the unit offline when the offline heuristic
// says so; completion or cancellation restores the listing. The decision
// itself is audited either way.
func (c *MaintenanceCoordinator) HandleTicketStatusChange(ctx context.Context, ticket domain.Ticket, ticketStatus, actorID string) error {
	switch ticketStatus {
	case TicketInProgress:
		if !domain.RequiresOfflineMode(ticket, c.keywords) {
			return c.recordDecision(ctx, ticket, domain.AuditDecisionKeepOnline, actorID)
		}
		if err := c.recordDecision(ctx, ticket, domain.AuditDecisionOffline, actorID); err != nil {
			return err
		}

		_, err := c.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{
			UnitID:        ticket.UnitID,
			StartDate:     time.Now().UTC(),
			Reason:        "maintenance ticket: " + ticket.Title,
			RequestID:     ticket.ID,
			NotifyTenants: true,
			AutoRestore:   true,
		}, actorID)
		if errors.Is(err, domain.ErrListingNotFound) {
			// Nothing to hide; the unit was never listed.
			slog.InfoContext(ctx, "maintenance ticket on unlisted unit",
				"ticket_id", ticket.ID, "unit_id", ticket.UnitID)
			return nil
		}
		return err

	case TicketCompleted, TicketCancelled:
		_, err := c.EndMaintenanceMode(ctx, ticket.UnitID, actorID, nil, "maintenance ticket "+ticketStatus)
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil
		}
		return err
	}

	return nil
}

// GetMaintenanceListingStatus reports whether a unit is hidden for
// maintenance, and with what restore prospects.
func (c *MaintenanceCoordinator) GetMaintenanceListingStatus(ctx context.Context, unitID string) (domain.MaintenanceListingStatus, error) {
	status := domain.MaintenanceListingStatus{UnitID: unitID}

	listing, err := c.listings.GetByUnit(ctx, unitID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return status, nil
		}
		return status, err
	}

	if listing.Status != domain.StatusMaintenance {
		return status, nil
	}
	status.IsInMaintenance = true

	changes, ok := c.latestStartChanges(ctx, unitID)
	if !ok {
		return status, nil
	}

	status.RequestID = changes.RequestID
	status.CanRestore = changes.PreviousStatus != ""
	if changes.EstimatedEndDate != "" {
		if t, err := time.Parse(time.RFC3339, changes.EstimatedEndDate); err == nil {
			status.EstimatedEndDate = &t
		}
	}

	return status, nil
}

// UnitsInMaintenanceMode lists an organization's listings currently hidden
// for maintenance.
func (c *MaintenanceCoordinator) UnitsInMaintenanceMode(ctx context.Context, orgID string) ([]domain.Listing, error) {
	return c.listings.ListByStatus(ctx, orgID, domain.StatusMaintenance)
}

// priorStatus digs the pre-maintenance status out of the most recent
// maintenance-start audit entry.
func (c *MaintenanceCoordinator) priorStatus(ctx context.Context, unitID string) (domain.Status, bool) {
	changes, ok := c.latestStartChanges(ctx, unitID)
	if !ok || changes.PreviousStatus == "" {
		return "", false
	}
	prior := domain.Status(changes.PreviousStatus)
	if !domain.ValidStatus(prior) {
		return "", false
	}
	return prior, true
}

func (c *MaintenanceCoordinator) latestStartChanges(ctx context.Context, unitID string) (maintenanceChanges, bool) {
	history, err := c.audit.History(ctx, unitID)
	if err != nil {
		slog.ErrorContext(ctx, "reading audit history", "unit_id", unitID, "error", err)
		return maintenanceChanges{}, false
	}

	// Newest first; the first start entry is the current maintenance window.
	for _, entry := range history {
		if entry.Action != domain.AuditMaintenanceStarted {
			continue
		}
		var changes maintenanceChanges
		if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
			return maintenanceChanges{}, false
		}
		return changes, true
	}
	return maintenanceChanges{}, false
}

func (c *MaintenanceCoordinator) recordDecision(ctx context.Context, ticket domain.Ticket, action domain.AuditAction, actorID string) error {
	id, err := generateID("aud")
	if err != nil {
		return fmt.Errorf("generating audit id: %w", err)
	}

	payload, err := json.Marshal(maintenanceChanges{RequestID: ticket.ID, Reason: ticket.Title})
	if err != nil {
		return fmt.Errorf("encoding decision changes: %w", err)
	}

	return c.audit.Append(ctx, domain.AuditEntry{
		ID:        id,
		UnitID:    ticket.UnitID,
		Action:    action,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Changes:   string(payload),
	})
}
