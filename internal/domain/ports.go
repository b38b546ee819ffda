package domain

import (
	"context"
	"errors"
	"time"
)

// ListingRepository defines the persistence contract for listings. Write
// methods take the audit entry describing the mutation so the adapter can
// commit both in a single transaction.
type ListingRepository interface {
	Create(ctx context.Context, listing Listing, entry AuditEntry) error
	GetByID(ctx context.Context, id string) (Listing, error)
	GetByUnit(ctx context.Context, unitID string) (Listing, error)
	UpdateStatus(ctx context.Context, listing Listing, entry AuditEntry) error
	Remove(ctx context.Context, unitID string, entry AuditEntry) error
	ListByStatus(ctx context.Context, orgID string, status Status) ([]Listing, error)
}

// UnitRepository reads units and their lease state. Owned by other
// subsystems; consumed read-only here.
type UnitRepository interface {
	GetByID(ctx context.Context, id string) (Unit, error)
	// ActiveLease returns the unit's active lease, or nil when there is none.
	ActiveLease(ctx context.Context, unitID string) (*Lease, error)
}

// AuditRepository is the append-only transition log. History returns
// entries newest-first; Statistics aggregates purely over recorded entries.
type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) error
	History(ctx context.Context, unitID string) ([]AuditEntry, error)
	Statistics(ctx context.Context, filter StatisticsFilter) (Statistics, error)
}

// EventPublisher defines the contract for emitting listing lifecycle events
// to async consumers (notifications, digests).
type EventPublisher interface {
	Publish(ctx context.Context, action AuditAction, listing Listing) error
}

// TransitionGuard validates a direct status-to-status move. Implementations
// reject the maintenance edges that must go through the coordinator.
type TransitionGuard interface {
	Check(ctx context.Context, from, to Status) error
}

// ErrCacheMiss marks a key absent from the advisory cache.
var ErrCacheMiss = errors.New("cache miss")

// KVStore is the advisory cache contract. It must never be the source of
// truth for eligibility or status; callers treat any error as a miss.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
