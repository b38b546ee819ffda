package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/listiq/internal/app"
	"github.com/neomorfeo/listiq/internal/domain"
)

func newTestCoordinator(s *memState, keywords []string) (*app.MaintenanceCoordinator, *memPublisher) {
	pub := &memPublisher{}
	c := app.NewMaintenanceCoordinator(
		&memListings{s: s},
		&memUnits{s: s},
		&memAudit{s: s},
		pub,
		keywords,
	)
	return c, pub
}

// listSuspended lists a unit and moves it to suspended, giving maintenance
// a non-default status to restore.
func listSuspended(t *testing.T, state *memState, unitID string) domain.Listing {
	t.Helper()
	svc, _ := newTestService(state)
	listing, err := svc.CreateListing(context.Background(), unitID, domain.ListingPayload{}, "setup")
	if err != nil {
		t.Fatal(err)
	}
	listing, err = svc.UpdateListingStatus(context.Background(), listing.ID, domain.StatusSuspended, "setup", "")
	if err != nil {
		t.Fatal(err)
	}
	return listing
}

func TestStartMaintenanceMode(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, pub := newTestCoordinator(state, nil)

	end := time.Now().Add(48 * time.Hour).UTC()
	listing, err := coord.StartMaintenanceMode(context.Background(), domain.MaintenanceModeConfig{
		UnitID:           "unit-1",
		StartDate:        time.Now().UTC(),
		EstimatedEndDate: &end,
		Reason:           "boiler replacement",
		RequestID:        "req-1",
		NotifyTenants:    true,
	}, "user-1")
	if err != nil {
		t.Fatalf("StartMaintenanceMode: %v", err)
	}
	if listing.Status != domain.StatusMaintenance {
		t.Errorf("Status = %q, want maintenance", listing.Status)
	}

	entries := state.entriesFor("unit-1", domain.AuditMaintenanceStarted)
	if len(entries) != 1 {
		t.Fatalf("start entries = %d, want 1", len(entries))
	}
	if entries[0].PreviousStatus != domain.StatusSuspended {
		t.Errorf("PreviousStatus = %q, want suspended", entries[0].PreviousStatus)
	}

	if len(pub.events) != 1 || pub.events[0].action != domain.AuditMaintenanceStarted {
		t.Errorf("events = %+v, want maintenance_started", pub.events)
	}
}

func TestStartMaintenanceMode_NoNotification(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, pub := newTestCoordinator(state, nil)

	_, err := coord.StartMaintenanceMode(context.Background(), domain.MaintenanceModeConfig{
		UnitID: "unit-1",
		Reason: "quiet work",
	}, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(pub.events) != 0 {
		t.Error("NotifyTenants=false must not publish")
	}
}

func TestStartMaintenanceMode_AlreadyInMaintenance(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	if _, err := coord.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{UnitID: "unit-1"}, "user-1"); err != nil {
		t.Fatal(err)
	}
	before := len(state.entries)

	listing, err := coord.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{UnitID: "unit-1"}, "user-1")
	if err != nil {
		t.Fatalf("repeat start should be a no-op success: %v", err)
	}
	if listing.Status != domain.StatusMaintenance {
		t.Errorf("Status = %q", listing.Status)
	}
	if len(state.entries) != before {
		t.Error("no-op start must not append audit entries")
	}
}

func TestStartMaintenanceMode_NoListing(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	coord, _ := newTestCoordinator(state, nil)

	_, err := coord.StartMaintenanceMode(context.Background(), domain.MaintenanceModeConfig{UnitID: "unit-1"}, "user-1")
	if !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestEndMaintenanceMode_RestoresPriorStatus(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	if _, err := coord.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{UnitID: "unit-1"}, "user-1"); err != nil {
		t.Fatal(err)
	}

	listing, err := coord.EndMaintenanceMode(ctx, "unit-1", "user-1", nil, "work done")
	if err != nil {
		t.Fatalf("EndMaintenanceMode: %v", err)
	}
	if listing.Status != domain.StatusSuspended {
		t.Errorf("Status = %q, want restored suspended", listing.Status)
	}

	entries := state.entriesFor("unit-1", domain.AuditMaintenanceEnded)
	if len(entries) != 1 {
		t.Fatalf("end entries = %d, want 1", len(entries))
	}
	if entries[0].NewStatus != domain.StatusSuspended {
		t.Errorf("NewStatus = %q", entries[0].NewStatus)
	}
}

func TestEndMaintenanceMode_ExplicitRestoreStatus(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	if _, err := coord.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{UnitID: "unit-1"}, "user-1"); err != nil {
		t.Fatal(err)
	}

	target := domain.StatusComingSoon
	listing, err := coord.EndMaintenanceMode(ctx, "unit-1", "user-1", &target, "")
	if err != nil {
		t.Fatal(err)
	}
	if listing.Status != domain.StatusComingSoon {
		t.Errorf("Status = %q, want coming_soon", listing.Status)
	}
}

func TestEndMaintenanceMode_NotInMaintenance(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, _ := newTestCoordinator(state, nil)
	before := len(state.entries)

	listing, err := coord.EndMaintenanceMode(context.Background(), "unit-1", "user-1", nil, "")
	if err != nil {
		t.Fatalf("ending outside maintenance should be a no-op success: %v", err)
	}
	if listing.Status != domain.StatusSuspended {
		t.Errorf("Status = %q", listing.Status)
	}
	if len(state.entries) != before {
		t.Error("no-op end must not append audit entries")
	}
}

func TestEndMaintenanceMode_LeaseBlocksRestoreToActive(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	svc, _ := newTestService(state)
	if _, err := svc.CreateListing(context.Background(), "unit-1", domain.ListingPayload{}, "setup"); err != nil {
		t.Fatal(err)
	}
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	// Prior status is active; a lease signed during maintenance blocks restore.
	if _, err := coord.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{UnitID: "unit-1"}, "user-1"); err != nil {
		t.Fatal(err)
	}
	state.addActiveLease("unit-1")

	_, err := coord.EndMaintenanceMode(ctx, "unit-1", "user-1", nil, "")
	var lErr *domain.ActiveLeaseError
	if !errors.As(err, &lErr) {
		t.Fatalf("expected ActiveLeaseError, got %v", err)
	}
}

func TestHandleTicketStatusChange(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	ticket := domain.Ticket{
		ID:       "tkt-1",
		UnitID:   "unit-1",
		Priority: domain.PriorityUrgent,
		Title:    "burst pipe",
	}

	if err := coord.HandleTicketStatusChange(ctx, ticket, app.TicketInProgress, "system"); err != nil {
		t.Fatalf("in_progress: %v", err)
	}
	if len(state.entriesFor("unit-1", domain.AuditDecisionOffline)) != 1 {
		t.Error("offline decision should be audited")
	}
	if got, _ := (&memListings{s: state}).GetByUnit(ctx, "unit-1"); got.Status != domain.StatusMaintenance {
		t.Errorf("Status = %q, want maintenance", got.Status)
	}

	if err := coord.HandleTicketStatusChange(ctx, ticket, app.TicketCompleted, "system"); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if got, _ := (&memListings{s: state}).GetByUnit(ctx, "unit-1"); got.Status != domain.StatusSuspended {
		t.Errorf("Status = %q, want restored suspended", got.Status)
	}
}

func TestHandleTicketStatusChange_KeepOnline(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	ticket := domain.Ticket{
		ID:       "tkt-2",
		UnitID:   "unit-1",
		Priority: domain.PriorityLow,
		Title:    "squeaky hinge",
	}

	if err := coord.HandleTicketStatusChange(ctx, ticket, app.TicketInProgress, "system"); err != nil {
		t.Fatal(err)
	}
	if len(state.entriesFor("unit-1", domain.AuditDecisionKeepOnline)) != 1 {
		t.Error("keep-online decision should be audited")
	}
	if got, _ := (&memListings{s: state}).GetByUnit(ctx, "unit-1"); got.Status == domain.StatusMaintenance {
		t.Error("routine ticket must not take the unit offline")
	}
}

func TestHandleTicketStatusChange_UnlistedUnit(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	coord, _ := newTestCoordinator(state, nil)

	ticket := domain.Ticket{ID: "tkt-3", UnitID: "unit-1", Priority: domain.PriorityUrgent, Title: "fire damage"}

	if err := coord.HandleTicketStatusChange(context.Background(), ticket, app.TicketInProgress, "system"); err != nil {
		t.Fatalf("ticket on unlisted unit should be tolerated: %v", err)
	}
	if err := coord.HandleTicketStatusChange(context.Background(), ticket, app.TicketCancelled, "system"); err != nil {
		t.Fatalf("cancellation on unlisted unit should be tolerated: %v", err)
	}
}

func TestGetMaintenanceListingStatus(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	listSuspended(t, state, "unit-1")
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	status, err := coord.GetMaintenanceListingStatus(ctx, "unit-1")
	if err != nil {
		t.Fatal(err)
	}
	if status.IsInMaintenance {
		t.Error("not yet in maintenance")
	}

	end := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	if _, err := coord.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{
		UnitID:           "unit-1",
		EstimatedEndDate: &end,
		RequestID:        "req-9",
	}, "user-1"); err != nil {
		t.Fatal(err)
	}

	status, err = coord.GetMaintenanceListingStatus(ctx, "unit-1")
	if err != nil {
		t.Fatal(err)
	}
	if !status.IsInMaintenance {
		t.Fatal("should report maintenance")
	}
	if !status.CanRestore {
		t.Error("prior status was recorded, restore should be possible")
	}
	if status.RequestID != "req-9" {
		t.Errorf("RequestID = %q", status.RequestID)
	}
	if status.EstimatedEndDate == nil || !status.EstimatedEndDate.Equal(end) {
		t.Errorf("EstimatedEndDate = %v, want %v", status.EstimatedEndDate, end)
	}
}

func TestUnitsInMaintenanceMode(t *testing.T) {
	state := newMemState()
	state.addUnit("unit-1", 1000)
	state.addUnit("unit-2", 1000)
	listSuspended(t, state, "unit-1")
	listSuspended(t, state, "unit-2")
	coord, _ := newTestCoordinator(state, nil)
	ctx := context.Background()

	if _, err := coord.StartMaintenanceMode(ctx, domain.MaintenanceModeConfig{UnitID: "unit-1"}, "user-1"); err != nil {
		t.Fatal(err)
	}

	listings, err := coord.UnitsInMaintenanceMode(ctx, "org-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(listings) != 1 || listings[0].UnitID != "unit-1" {
		t.Errorf("listings = %+v, want only unit-1", listings)
	}
}
