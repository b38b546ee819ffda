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

// ListingService drives the listing lifecycle: create, status transitions,
// removal. Guard data (unit existence, lease state) comes from injected
// collaborators; every mutation lands in the audit trail.
type ListingService struct {
	listings  domain.ListingRepository
	units     domain.UnitRepository
	audit     domain.AuditRepository
	publisher domain.EventPublisher
	guard     domain.TransitionGuard
}

// NewListingService creates a service with the given adapters.
func NewListingService(
	listings domain.ListingRepository,
	units domain.UnitRepository,
	audit domain.AuditRepository,
	publisher domain.EventPublisher,
	guard domain.TransitionGuard,
) *ListingService {
	return &ListingService{
		listings:  listings,
		units:     units,
		audit:     audit,
		publisher: publisher,
		guard:     guard,
	}
}

// statusChange is the Changes payload attached to transition audit entries.
type statusChange struct {
	Reason string `json:"reason,omitempty"`
	Bulk   bool   `json:"bulk,omitempty"`
}

// CreateListing lists a unit on the marketplace. The unit must exist, have
// no current listing, and have no active lease.
func (s *ListingService) CreateListing(ctx context.Context, unitID string, payload domain.ListingPayload, actorID string) (domain.Listing, error) {
	return s.create(ctx, unitID, payload, actorID, domain.AuditListingCreated)
}

// create is the shared creation path; bulk callers pass a bulk-tagged
// audit action so the trail distinguishes batch work.
func (s *ListingService) create(ctx context.Context, unitID string, payload domain.ListingPayload, actorID string, action domain.AuditAction) (domain.Listing, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, domain.ErrUnitNotFound) {
			return domain.Listing{}, &domain.ValidationError{Field: "unitId", Reason: "unit does not exist"}
		}
		return domain.Listing{}, fmt.Errorf("loading unit: %w", err)
	}

	if unit.ListingID != nil {
		return domain.Listing{}, &domain.ListingConflictError{UnitID: unitID, ListingID: *unit.ListingID}
	}

	lease, err := s.units.ActiveLease(ctx, unitID)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("checking lease: %w", err)
	}
	if lease != nil {
		return domain.Listing{}, &domain.ActiveLeaseError{UnitID: unitID, LeaseID: lease.ID}
	}

	id, err := generateID("lst")
	if err != nil {
		return domain.Listing{}, fmt.Errorf("generating listing id: %w", err)
	}

	listing, err := domain.NewListing(id, unit, payload)
	if err != nil {
		return domain.Listing{}, err
	}

	entry, err := newAuditEntry(unitID, &listing.ID, action, domain.StatusPrivate, domain.StatusActive, actorID, statusChange{Bulk: action == domain.AuditBulkListingCreated})
	if err != nil {
		return domain.Listing{}, err
	}

	if err := s.listings.Create(ctx, listing, entry); err != nil {
		return domain.Listing{}, fmt.Errorf("creating listing: %w", err)
	}

	publishEvent(ctx, s.publisher, action, listing)
	return listing, nil
}

// UpdateListingStatus moves a listing to a new status. A same-status call
// is a no-op success and appends no audit entry: the trail records
// transitions and a non-transition has nothing to record. Any other move is
// allowed except the maintenance edges (guard) and entering active while a
// lease is active.
func (s *ListingService) UpdateListingStatus(ctx context.Context, listingID string, newStatus domain.Status, actorID, reason string) (domain.Listing, error) {
	if !domain.ValidStatus(newStatus) {
		return domain.Listing{}, &domain.ValidationError{Field: "status", Reason: "unknown status " + string(newStatus)}
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return domain.Listing{}, err
	}

	if listing.Status == newStatus {
		return listing, nil
	}

	if err := s.guard.Check(ctx, listing.Status, newStatus); err != nil {
		return domain.Listing{}, err
	}

	if newStatus == domain.StatusActive {
		lease, err := s.units.ActiveLease(ctx, listing.UnitID)
		if err != nil {
			return domain.Listing{}, fmt.Errorf("checking lease: %w", err)
		}
		if lease != nil {
			return domain.Listing{}, &domain.ActiveLeaseError{UnitID: listing.UnitID, LeaseID: lease.ID}
		}
	}

	previous := listing.Status
	listing.Status = newStatus
	listing.UpdatedAt = time.Now().UTC()

	entry, err := newAuditEntry(listing.UnitID, &listing.ID, domain.AuditStatusChanged, previous, newStatus, actorID, statusChange{Reason: reason})
	if err != nil {
		return domain.Listing{}, err
	}

	if err := s.listings.UpdateStatus(ctx, listing, entry); err != nil {
		return domain.Listing{}, fmt.Errorf("updating listing status: %w", err)
	}

	publishEvent(ctx, s.publisher, domain.AuditStatusChanged, listing)
	return listing, nil
}

// RemoveListing takes a unit off the marketplace. Removing a unit with no
// listing is a success with zero effect; cleanup paths rely on that.
func (s *ListingService) RemoveListing(ctx context.Context, unitID, actorID, reason string) (domain.Unit, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return domain.Unit{}, err
	}

	if unit.ListingID == nil {
		return unit, nil
	}

	listing, err := s.listings.GetByUnit(ctx, unitID)
	if err != nil {
		return domain.Unit{}, fmt.Errorf("loading listing: %w", err)
	}

	entry, err := newAuditEntry(unitID, &listing.ID, domain.AuditListingRemoved, listing.Status, domain.StatusPrivate, actorID, statusChange{Reason: reason})
	if err != nil {
		return domain.Unit{}, err
	}

	if err := s.listings.Remove(ctx, unitID, entry); err != nil {
		return domain.Unit{}, fmt.Errorf("removing listing: %w", err)
	}

	publishEvent(ctx, s.publisher, domain.AuditListingRemoved, listing)

	unit.ListingID = nil
	return unit, nil
}

// GetListing returns a listing by its identifier.
func (s *ListingService) GetListing(ctx context.Context, listingID string) (domain.Listing, error) {
	return s.listings.GetByID(ctx, listingID)
}

// GetListingByUnit returns the unit's current listing, if any.
func (s *ListingService) GetListingByUnit(ctx context.Context, unitID string) (domain.Listing, error) {
	return s.listings.GetByUnit(ctx, unitID)
}

// History returns the unit's audit trail, newest first.
func (s *ListingService) History(ctx context.Context, unitID string) ([]domain.AuditEntry, error) {
	return s.audit.History(ctx, unitID)
}

// publishEvent emits a lifecycle event after the mutation has committed.
// The audit trail is the record; events are best-effort notifications, so a
// failed publish must not report an already-persisted mutation as failed.
func publishEvent(ctx context.Context, pub domain.EventPublisher, action domain.AuditAction, listing domain.Listing) {
	if err := pub.Publish(ctx, action, listing); err != nil {
		slog.ErrorContext(ctx, "publishing listing event",
			"action", action,
			"listing_id", listing.ID,
			"unit_id", listing.UnitID,
			"error", err,
		)
	}
}

// newAuditEntry assembles an audit entry with a generated id and JSON
// changes payload. Shared by every service that records transitions.
func newAuditEntry(unitID string, listingID *string, action domain.AuditAction, previous, next domain.Status, actorID string, changes any) (domain.AuditEntry, error) {
	id, err := generateID("aud")
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("generating audit id: %w", err)
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("encoding audit changes: %w", err)
	}

	return domain.AuditEntry{
		ID:             id,
		UnitID:         unitID,
		ListingID:      listingID,
		Action:         action,
		PreviousStatus: previous,
		NewStatus:      next,
		ActorID:        actorID,
		Timestamp:      time.Now().UTC(),
		Changes:        string(payload),
	}, nil
}
