package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/neomorfeo/listiq/internal/adapter/fsm"
	handler "github.com/neomorfeo/listiq/internal/adapter/http"
	"github.com/neomorfeo/listiq/internal/adapter/sqlite"
	"github.com/neomorfeo/listiq/internal/app"
	"github.com/neomorfeo/listiq/internal/domain"
)

type stubPublisher struct{}

func (stubPublisher) Publish(context.Context, domain.AuditAction, domain.Listing) error {
	return nil
}

func newTestAPI(t *testing.T) humatest.TestAPI {
	t.Helper()

	repos, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { repos.Close() })

	ctx := context.Background()
	for _, id := range []string{"unit-1", "unit-2"} {
		if err := repos.Units.SeedUnit(ctx, domain.Unit{
			ID:           id,
			OrgID:        "org-1",
			PropertyName: "Maple Court",
			Label:        id,
			MarketRent:   1200,
		}); err != nil {
			t.Fatalf("seeding unit: %v", err)
		}
	}
	if err := repos.Units.SeedLease(ctx, domain.Lease{
		ID:        "lease-1",
		UnitID:    "unit-2",
		Status:    domain.LeaseActive,
		StartDate: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seeding lease: %v", err)
	}

	listingSvc := app.NewListingService(repos.Listings, repos.Units, repos.Audit, stubPublisher{}, fsm.New())
	services := handler.Services{
		Listings:    listingSvc,
		Bulk:        app.NewBulkService(listingSvc),
		Eligibility: app.NewEligibilityService(repos.Listings, repos.Units),
		Maintenance: app.NewMaintenanceCoordinator(repos.Listings, repos.Units, repos.Audit, stubPublisher{}, nil),
		Statistics:  app.NewStatisticsService(repos.Audit, nil, 0),
	}

	_, api := humatest.New(t)
	handler.Register(api, services)
	return api
}

func decode(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestCreateAndGetListing(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/v1/units/unit-1/listing",
		"X-Actor-ID: user-1",
		map[string]any{"title": "Garden flat", "price": 1500},
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", resp.Code, resp.Body.String())
	}

	var created handler.ListingResponse
	decode(t, resp.Body.Bytes(), &created)
	if created.Status != "active" || created.Title != "Garden flat" || created.Price != 1500 {
		t.Errorf("created = %+v", created)
	}

	resp = api.Get("/api/v1/listings/" + created.ID)
	if resp.Code != http.StatusOK {
		t.Fatalf("get status = %d", resp.Code)
	}
	var got handler.ListingResponse
	decode(t, resp.Body.Bytes(), &got)
	if got.ID != created.ID {
		t.Errorf("got id %q, want %q", got.ID, created.ID)
	}
}

func TestCreateListing_ActiveLeaseConflict(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/v1/units/unit-2/listing",
		"X-Actor-ID: user-1",
		map[string]any{},
	)
	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", resp.Code, resp.Body.String())
	}
}

func TestGetListing_NotFound(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/api/v1/listings/ghost")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestUpdateListingStatus(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/v1/units/unit-1/listing", "X-Actor-ID: user-1", map[string]any{})
	var created handler.ListingResponse
	decode(t, resp.Body.Bytes(), &created)

	resp = api.Post("/api/v1/listings/"+created.ID+"/status",
		"X-Actor-ID: user-1",
		map[string]any{"status": "suspended", "reason": "payment issue"},
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var updated handler.ListingResponse
	decode(t, resp.Body.Bytes(), &updated)
	if updated.Status != "suspended" {
		t.Errorf("Status = %q, want suspended", updated.Status)
	}
}

func TestMaintenanceFlow(t *testing.T) {
	api := newTestAPI(t)

	api.Post("/api/v1/units/unit-1/listing", "X-Actor-ID: user-1", map[string]any{})

	resp := api.Post("/api/v1/units/unit-1/maintenance",
		"X-Actor-ID: user-1",
		map[string]any{"reason": "boiler replacement"},
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = api.Get("/api/v1/units/unit-1/maintenance")
	if resp.Code != http.StatusOK {
		t.Fatalf("status query = %d", resp.Code)
	}
	var status struct {
		IsInMaintenance bool `json:"is_in_maintenance"`
		CanRestore      bool `json:"can_restore"`
	}
	decode(t, resp.Body.Bytes(), &status)
	if !status.IsInMaintenance || !status.CanRestore {
		t.Errorf("status = %+v", status)
	}

	resp = api.Post("/api/v1/units/unit-1/maintenance/end",
		"X-Actor-ID: user-1",
		map[string]any{},
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("end status = %d, body %s", resp.Code, resp.Body.String())
	}
	var restored handler.ListingResponse
	decode(t, resp.Body.Bytes(), &restored)
	if restored.Status != "active" {
		t.Errorf("restored status = %q, want active", restored.Status)
	}
}

func TestEligibilityEndpoint(t *testing.T) {
	api := newTestAPI(t)

	api.Post("/api/v1/units/unit-1/listing", "X-Actor-ID: user-1", map[string]any{})

	resp := api.Get("/api/v1/units/unit-1/eligibility")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var e handler.EligibilityResponse
	decode(t, resp.Body.Bytes(), &e)
	if !e.IsEligible {
		t.Errorf("eligibility = %+v, want eligible", e)
	}

	// Leased unit is ineligible but still a 200: business outcome, not error.
	resp = api.Get("/api/v1/units/unit-2/eligibility")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	decode(t, resp.Body.Bytes(), &e)
	if e.IsEligible {
		t.Error("leased unit must be ineligible")
	}
}

func TestBulkEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/v1/listings/bulk",
		"X-Actor-ID: user-1",
		"X-Org-ID: org-1",
		map[string]any{
			"operations": []map[string]any{
				{"unit_id": "unit-1", "action": "list", "payload": map[string]any{"price": 1000}},
			},
		},
	)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var result struct {
		Successful []string `json:"successful"`
		Summary    struct {
			Total     int `json:"total"`
			Succeeded int `json:"succeeded"`
		} `json:"summary"`
	}
	decode(t, resp.Body.Bytes(), &result)
	if result.Summary.Succeeded != 1 || len(result.Successful) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestAuditEndpoints(t *testing.T) {
	api := newTestAPI(t)

	api.Post("/api/v1/units/unit-1/listing", "X-Actor-ID: alice", map[string]any{})

	resp := api.Get("/api/v1/units/unit-1/audit")
	if resp.Code != http.StatusOK {
		t.Fatalf("history status = %d", resp.Code)
	}
	var history []handler.AuditEntryResponse
	decode(t, resp.Body.Bytes(), &history)
	if len(history) != 1 || history[0].Action != "listing_created" {
		t.Errorf("history = %+v", history)
	}

	resp = api.Get("/api/v1/audit/statistics?actor_id=alice")
	if resp.Code != http.StatusOK {
		t.Fatalf("statistics status = %d", resp.Code)
	}
	var stats struct {
		TotalEntries int `json:"total_entries"`
	}
	decode(t, resp.Body.Bytes(), &stats)
	if stats.TotalEntries != 1 {
		t.Errorf("TotalEntries = %d, want 1", stats.TotalEntries)
	}
}
