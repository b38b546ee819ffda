package app_test

import (
	"context"
	"errors"
	"sort"

	"github.com/neomorfeo/listiq/internal/domain"
)

// memState is shared in-memory backing for the repository mocks. The
// views below implement the domain ports over it, mirroring how the real
// adapters share one database.
type memState struct {
	units    map[string]domain.Unit
	leases   map[string]*domain.Lease // keyed by unit id
	listings map[string]domain.Listing
	entries  []domain.AuditEntry

	// failRemove injects a removal failure for the given unit ids, used
	// to exercise the rollback-failed path.
	failRemove map[string]bool
}

func newMemState() *memState {
	return &memState{
		units:      make(map[string]domain.Unit),
		leases:     make(map[string]*domain.Lease),
		listings:   make(map[string]domain.Listing),
		failRemove: make(map[string]bool),
	}
}

func (s *memState) addUnit(id string, rent float64) {
	s.units[id] = domain.Unit{
		ID:           id,
		OrgID:        "org-1",
		PropertyName: "Maple Court",
		Label:        id,
		MarketRent:   rent,
	}
}

func (s *memState) addActiveLease(unitID string) {
	s.leases[unitID] = &domain.Lease{ID: "lease-" + unitID, UnitID: unitID, Status: domain.LeaseActive}
}

func (s *memState) entriesFor(unitID string, action domain.AuditAction) []domain.AuditEntry {
	var out []domain.AuditEntry
	for _, e := range s.entries {
		if e.UnitID == unitID && e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// --- ListingRepository view ---

type memListings struct{ s *memState }

func (m *memListings) Create(_ context.Context, l domain.Listing, entry domain.AuditEntry) error {
	for _, existing := range m.s.listings {
		if existing.UnitID == l.UnitID {
			return &domain.ListingConflictError{UnitID: l.UnitID, ListingID: existing.ID}
		}
	}
	m.s.listings[l.ID] = l
	unit := m.s.units[l.UnitID]
	unit.ListingID = &l.ID
	m.s.units[l.UnitID] = unit
	m.s.entries = append(m.s.entries, entry)
	return nil
}

func (m *memListings) GetByID(_ context.Context, id string) (domain.Listing, error) {
	l, ok := m.s.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	return l, nil
}

func (m *memListings) GetByUnit(_ context.Context, unitID string) (domain.Listing, error) {
	for _, l := range m.s.listings {
		if l.UnitID == unitID {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrListingNotFound
}

func (m *memListings) UpdateStatus(_ context.Context, l domain.Listing, entry domain.AuditEntry) error {
	if _, ok := m.s.listings[l.ID]; !ok {
		return domain.ErrListingNotFound
	}
	m.s.listings[l.ID] = l
	m.s.entries = append(m.s.entries, entry)
	return nil
}

func (m *memListings) Remove(_ context.Context, unitID string, entry domain.AuditEntry) error {
	if m.s.failRemove[unitID] {
		return errors.New("SQLITE_BUSY: database is locked")
	}
	for id, l := range m.s.listings {
		if l.UnitID == unitID {
			delete(m.s.listings, id)
			unit := m.s.units[unitID]
			unit.ListingID = nil
			m.s.units[unitID] = unit
			m.s.entries = append(m.s.entries, entry)
			return nil
		}
	}
	return domain.ErrListingNotFound
}

func (m *memListings) ListByStatus(_ context.Context, orgID string, status domain.Status) ([]domain.Listing, error) {
	var out []domain.Listing
	for _, l := range m.s.listings {
		if l.Status == status && m.s.units[l.UnitID].OrgID == orgID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- UnitRepository view ---

type memUnits struct{ s *memState }

func (m *memUnits) GetByID(_ context.Context, id string) (domain.Unit, error) {
	u, ok := m.s.units[id]
	if !ok {
		return domain.Unit{}, domain.ErrUnitNotFound
	}
	return u, nil
}

func (m *memUnits) ActiveLease(_ context.Context, unitID string) (*domain.Lease, error) {
	return m.s.leases[unitID], nil
}

// --- AuditRepository view ---

type memAudit struct{ s *memState }

func (m *memAudit) Append(_ context.Context, e domain.AuditEntry) error {
	m.s.entries = append(m.s.entries, e)
	return nil
}

func (m *memAudit) History(_ context.Context, unitID string) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	// Entries are appended in order; history reads newest first.
	for i := len(m.s.entries) - 1; i >= 0; i-- {
		if m.s.entries[i].UnitID == unitID {
			out = append(out, m.s.entries[i])
		}
	}
	return out, nil
}

func (m *memAudit) Statistics(_ context.Context, filter domain.StatisticsFilter) (domain.Statistics, error) {
	stats := domain.Statistics{
		ActionBreakdown: make(map[domain.AuditAction]int),
		StatusBreakdown: make(map[domain.Status]int),
		UserActivity:    make(map[string]int),
	}
	for _, e := range m.s.entries {
		if filter.UnitID != "" && e.UnitID != filter.UnitID {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		stats.TotalEntries++
		stats.ActionBreakdown[e.Action]++
		if e.NewStatus != "" {
			stats.StatusBreakdown[e.NewStatus]++
		}
		stats.UserActivity[e.ActorID]++
	}
	return stats, nil
}

// --- EventPublisher mock ---

type publishedEvent struct {
	action  domain.AuditAction
	listing domain.Listing
}

type memPublisher struct {
	events []publishedEvent
}

func (m *memPublisher) Publish(_ context.Context, action domain.AuditAction, listing domain.Listing) error {
	m.events = append(m.events, publishedEvent{action: action, listing: listing})
	return nil
}

// failPublisher stands in for a broken job queue.
type failPublisher struct{}

func (failPublisher) Publish(context.Context, domain.AuditAction, domain.Listing) error {
	return errors.New("river: insert failed")
}
