package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/listiq/internal/app"
	"github.com/neomorfeo/listiq/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Services bundles the application services the API exposes.
type Services struct {
	Listings    *app.ListingService
	Bulk        *app.BulkService
	Eligibility *app.EligibilityService
	Maintenance *app.MaintenanceCoordinator
	Statistics  *app.StatisticsService
}

// ListingResponse is the API representation of a listing.
type ListingResponse struct {
	ID            string  `json:"id" doc:"Unique identifier"`
	UnitID        string  `json:"unit_id" doc:"Owning unit"`
	Status        string  `json:"status" doc:"Marketplace visibility state"`
	Title         string  `json:"title" doc:"Display title"`
	Description   string  `json:"description" doc:"Display description"`
	Price         float64 `json:"price" doc:"Monthly price"`
	AvailableFrom string  `json:"available_from" doc:"Availability date (ISO 8601)"`
	ExpiresAt     string  `json:"expires_at,omitempty" doc:"Expiration date (ISO 8601)"`
	CreatedAt     string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt     string  `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toListingResponse(l domain.Listing) ListingResponse {
	resp := ListingResponse{
		ID:            l.ID,
		UnitID:        l.UnitID,
		Status:        string(l.Status),
		Title:         l.Title,
		Description:   l.Description,
		Price:         l.Price,
		AvailableFrom: l.AvailableFrom.Format(timeFormat),
		CreatedAt:     l.CreatedAt.Format(timeFormat),
		UpdatedAt:     l.UpdatedAt.Format(timeFormat),
	}
	if l.ExpiresAt != nil {
		resp.ExpiresAt = l.ExpiresAt.Format(timeFormat)
	}
	return resp
}

// ListingPayloadBody is the caller-supplied part of a listing.
type ListingPayloadBody struct {
	Title         string  `json:"title,omitempty" maxLength:"255" doc:"Display title (synthesized if omitted)"`
	Description   string  `json:"description,omitempty" doc:"Display description (synthesized if omitted)"`
	Price         float64 `json:"price,omitempty" minimum:"0" doc:"Monthly price (defaults to the unit's market rent)"`
	AvailableFrom string  `json:"available_from,omitempty" doc:"Availability date (ISO 8601)"`
	ExpiresAt     string  `json:"expires_at,omitempty" doc:"Expiration date (ISO 8601), must be after availability"`
}

func (b ListingPayloadBody) toPayload() (domain.ListingPayload, error) {
	p := domain.ListingPayload{
		Title:       b.Title,
		Description: b.Description,
		Price:       b.Price,
	}
	if b.AvailableFrom != "" {
		t, err := time.Parse(timeFormat, b.AvailableFrom)
		if err != nil {
			return p, &domain.ValidationError{Field: "available_from", Reason: "not an ISO 8601 timestamp"}
		}
		p.AvailableFrom = t
	}
	if b.ExpiresAt != "" {
		t, err := time.Parse(timeFormat, b.ExpiresAt)
		if err != nil {
			return p, &domain.ValidationError{Field: "expires_at", Reason: "not an ISO 8601 timestamp"}
		}
		p.ExpiresAt = &t
	}
	return p, nil
}

// --- Create / read / update / remove ---

type CreateListingInput struct {
	UnitID  string `path:"unitId" doc:"Unit ID"`
	ActorID string `header:"X-Actor-ID" doc:"Acting user"`
	Body    ListingPayloadBody
}

type CreateListingOutput struct {
	Body ListingResponse
}

type GetListingInput struct {
	ID string `path:"id" doc:"Listing ID"`
}

type GetListingOutput struct {
	Body ListingResponse
}

type UpdateStatusInput struct {
	ID      string `path:"id" doc:"Listing ID"`
	ActorID string `header:"X-Actor-ID" doc:"Acting user"`
	Body    struct {
		Status string `json:"status" doc:"Target status" enum:"private,pending,coming_soon,active,suspended,expired"`
		Reason string `json:"reason,omitempty" doc:"Free-form reason recorded in the audit trail"`
	}
}

type UpdateStatusOutput struct {
	Body ListingResponse
}

type RemoveListingInput struct {
	UnitID  string `path:"unitId" doc:"Unit ID"`
	ActorID string `header:"X-Actor-ID" doc:"Acting user"`
	Reason  string `query:"reason" required:"false" doc:"Free-form reason recorded in the audit trail"`
}

type RemoveListingOutput struct {
	Body struct {
		UnitID    string `json:"unit_id" doc:"Unit ID"`
		ListingID string `json:"listing_id,omitempty" doc:"Remaining listing, if any (always empty after removal)"`
	}
}

// --- Bulk ---

type BulkOperationBody struct {
	UnitID  string              `json:"unit_id" doc:"Unit ID"`
	Action  string              `json:"action" doc:"Operation to apply" enum:"list,unlist,suspend,activate"`
	Payload *ListingPayloadBody `json:"payload,omitempty" doc:"Listing payload (required for list)"`
}

type BulkUpdateInput struct {
	ActorID string `header:"X-Actor-ID" doc:"Acting user"`
	OrgID   string `header:"X-Org-ID" doc:"Organization scope"`
	Body    struct {
		Operations []BulkOperationBody `json:"operations" maxItems:"50" doc:"Batch of per-unit operations"`
	}
}

type BulkFailureResponse struct {
	UnitID string `json:"unit_id"`
	Error  string `json:"error"`
}

type BulkUpdateOutput struct {
	Body struct {
		Successful []string              `json:"successful" doc:"Unit ids whose operation succeeded"`
		Failed     []BulkFailureResponse `json:"failed" doc:"Per-unit failures"`
		Summary    struct {
			Total     int `json:"total"`
			Succeeded int `json:"succeeded"`
			Failed    int `json:"failed"`
		} `json:"summary"`
	}
}

// --- Maintenance ---

type StartMaintenanceInput struct {
	UnitID  string `path:"unitId" doc:"Unit ID"`
	ActorID string `header:"X-Actor-ID" doc:"Acting user"`
	Body    struct {
		Reason           string `json:"reason" doc:"Why the unit is going offline"`
		StartDate        string `json:"start_date,omitempty" doc:"Maintenance start (ISO 8601, defaults to now)"`
		EstimatedEndDate string `json:"estimated_end_date,omitempty" doc:"Expected end (ISO 8601)"`
		RequestID        string `json:"request_id,omitempty" doc:"Linked maintenance ticket"`
		NotifyTenants    bool   `json:"notify_tenants,omitempty" doc:"Fan out tenant notifications"`
		AutoRestore      bool   `json:"auto_restore,omitempty" doc:"Restore automatically when the ticket closes"`
	}
}

type StartMaintenanceOutput struct {
	Body ListingResponse
}

type EndMaintenanceInput struct {
	UnitID  string `path:"unitId" doc:"Unit ID"`
	ActorID string `header:"X-Actor-ID" doc:"Acting user"`
	Body    struct {
		RestoreStatus string `json:"restore_status,omitempty" doc:"Explicit status to restore (defaults to the pre-maintenance status)"`
		Reason        string `json:"reason,omitempty" doc:"Free-form reason recorded in the audit trail"`
	}
}

type EndMaintenanceOutput struct {
	Body ListingResponse
}

type MaintenanceStatusInput struct {
	UnitID string `path:"unitId" doc:"Unit ID"`
}

type MaintenanceStatusOutput struct {
	Body struct {
		UnitID           string `json:"unit_id"`
		IsInMaintenance  bool   `json:"is_in_maintenance"`
		RequestID        string `json:"request_id,omitempty"`
		CanRestore       bool   `json:"can_restore"`
		EstimatedEndDate string `json:"estimated_end_date,omitempty"`
	}
}

type UnitsInMaintenanceInput struct {
	OrgID string `path:"orgId" doc:"Organization ID"`
}

type UnitsInMaintenanceOutput struct {
	Body []ListingResponse
}

type TicketEventInput struct {
	ActorID string `header:"X-Actor-ID" doc:"Acting user (or system)"`
	Body    struct {
		TicketID    string `json:"ticket_id" doc:"Maintenance ticket ID"`
		UnitID      string `json:"unit_id" doc:"Unit the ticket is about"`
		Priority    string `json:"priority" doc:"Ticket priority" enum:"low,medium,high,urgent"`
		Title       string `json:"title,omitempty" doc:"Ticket title"`
		Description string `json:"description,omitempty" doc:"Ticket description"`
		Status      string `json:"status" doc:"New ticket status" enum:"in_progress,completed,cancelled"`
	}
}

type TicketEventOutput struct {
	Body struct {
		Accepted bool `json:"accepted"`
	}
}

// --- Eligibility ---

type EligibilityInput struct {
	UnitID string `path:"unitId" doc:"Unit ID"`
}

type EligibilityResponse struct {
	UnitID        string `json:"unit_id"`
	IsEligible    bool   `json:"is_eligible"`
	ListingStatus string `json:"listing_status"`
	Reason        string `json:"reason"`
}

func toEligibilityResponse(e domain.Eligibility) EligibilityResponse {
	return EligibilityResponse{
		UnitID:        e.UnitID,
		IsEligible:    e.IsEligible,
		ListingStatus: string(e.ListingStatus),
		Reason:        e.Reason,
	}
}

type EligibilityOutput struct {
	Body EligibilityResponse
}

type MultiEligibilityInput struct {
	Body struct {
		UnitIDs []string `json:"unit_ids" minItems:"1" doc:"Units to evaluate"`
	}
}

type MultiEligibilityOutput struct {
	Body []EligibilityResponse
}

// --- Audit ---

type HistoryInput struct {
	UnitID string `path:"unitId" doc:"Unit ID"`
}

type AuditEntryResponse struct {
	ID             string `json:"id"`
	UnitID         string `json:"unit_id"`
	ListingID      string `json:"listing_id,omitempty"`
	Action         string `json:"action"`
	PreviousStatus string `json:"previous_status,omitempty"`
	NewStatus      string `json:"new_status,omitempty"`
	ActorID        string `json:"actor_id"`
	Timestamp      string `json:"timestamp"`
	Changes        string `json:"changes,omitempty"`
}

type HistoryOutput struct {
	Body []AuditEntryResponse
}

type StatisticsInput struct {
	UnitID  string `query:"unit_id" required:"false" doc:"Filter by unit"`
	ActorID string `query:"actor_id" required:"false" doc:"Filter by actor"`
	Action  string `query:"action" required:"false" doc:"Filter by action"`
	Since   string `query:"since" required:"false" doc:"Entries at or after (ISO 8601)"`
	Until   string `query:"until" required:"false" doc:"Entries at or before (ISO 8601)"`
}

type StatisticsOutput struct {
	Body struct {
		TotalEntries    int            `json:"total_entries"`
		ActionBreakdown map[string]int `json:"action_breakdown"`
		StatusBreakdown map[string]int `json:"status_breakdown"`
		UserActivity    map[string]int `json:"user_activity"`
		Timeline        []struct {
			Day   string `json:"day"`
			Count int    `json:"count"`
		} `json:"timeline"`
	}
}

// Register adds all listing API routes to the Huma API.
func Register(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-listing",
		Method:      http.MethodPost,
		Path:        "/api/v1/units/{unitId}/listing",
		Summary:     "List a unit on the marketplace",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *CreateListingInput) (*CreateListingOutput, error) {
		payload, err := input.Body.toPayload()
		if err != nil {
			return nil, toHumaError(err)
		}
		listing, err := svc.Listings.CreateListing(ctx, input.UnitID, payload, input.ActorID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateListingOutput{Body: toListingResponse(listing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-listing",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Get a listing by ID",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *GetListingInput) (*GetListingOutput, error) {
		listing, err := svc.Listings.GetListing(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetListingOutput{Body: toListingResponse(listing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-listing-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/listings/{id}/status",
		Summary:     "Change a listing's status",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *UpdateStatusInput) (*UpdateStatusOutput, error) {
		listing, err := svc.Listings.UpdateListingStatus(ctx, input.ID, domain.Status(input.Body.Status), input.ActorID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateStatusOutput{Body: toListingResponse(listing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-listing",
		Method:      http.MethodDelete,
		Path:        "/api/v1/units/{unitId}/listing",
		Summary:     "Take a unit off the marketplace",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *RemoveListingInput) (*RemoveListingOutput, error) {
		unit, err := svc.Listings.RemoveListing(ctx, input.UnitID, input.ActorID, input.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &RemoveListingOutput{}
		out.Body.UnitID = unit.ID
		if unit.ListingID != nil {
			out.Body.ListingID = *unit.ListingID
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "bulk-update-listings",
		Method:      http.MethodPost,
		Path:        "/api/v1/listings/bulk",
		Summary:     "Apply a batch of listing operations",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *BulkUpdateInput) (*BulkUpdateOutput, error) {
		ops := make([]domain.BulkOperation, 0, len(input.Body.Operations))
		for _, op := range input.Body.Operations {
			dop := domain.BulkOperation{UnitID: op.UnitID, Action: domain.BulkAction(op.Action)}
			if op.Payload != nil {
				p, err := op.Payload.toPayload()
				if err != nil {
					return nil, toHumaError(err)
				}
				dop.Payload = &p
			}
			ops = append(ops, dop)
		}

		result, err := svc.Bulk.BulkUpdateListings(ctx, ops, input.ActorID, input.OrgID)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &BulkUpdateOutput{}
		out.Body.Successful = result.Successful
		out.Body.Failed = make([]BulkFailureResponse, len(result.Failed))
		for i, f := range result.Failed {
			out.Body.Failed[i] = BulkFailureResponse{UnitID: f.UnitID, Error: f.Error}
		}
		out.Body.Summary.Total = result.Summary.Total
		out.Body.Summary.Succeeded = result.Summary.Succeeded
		out.Body.Summary.Failed = result.Summary.Failed
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "start-maintenance",
		Method:      http.MethodPost,
		Path:        "/api/v1/units/{unitId}/maintenance",
		Summary:     "Hide a unit's listing for maintenance",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *StartMaintenanceInput) (*StartMaintenanceOutput, error) {
		cfg := domain.MaintenanceModeConfig{
			UnitID:        input.UnitID,
			Reason:        input.Body.Reason,
			RequestID:     input.Body.RequestID,
			NotifyTenants: input.Body.NotifyTenants,
			AutoRestore:   input.Body.AutoRestore,
			StartDate:     time.Now().UTC(),
		}
		if input.Body.StartDate != "" {
			t, err := time.Parse(timeFormat, input.Body.StartDate)
			if err != nil {
				return nil, toHumaError(&domain.ValidationError{Field: "start_date", Reason: "not an ISO 8601 timestamp"})
			}
			cfg.StartDate = t
		}
		if input.Body.EstimatedEndDate != "" {
			t, err := time.Parse(timeFormat, input.Body.EstimatedEndDate)
			if err != nil {
				return nil, toHumaError(&domain.ValidationError{Field: "estimated_end_date", Reason: "not an ISO 8601 timestamp"})
			}
			cfg.EstimatedEndDate = &t
		}

		listing, err := svc.Maintenance.StartMaintenanceMode(ctx, cfg, input.ActorID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StartMaintenanceOutput{Body: toListingResponse(listing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "end-maintenance",
		Method:      http.MethodPost,
		Path:        "/api/v1/units/{unitId}/maintenance/end",
		Summary:     "Restore a unit's listing after maintenance",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *EndMaintenanceInput) (*EndMaintenanceOutput, error) {
		var restore *domain.Status
		if input.Body.RestoreStatus != "" {
			s := domain.Status(input.Body.RestoreStatus)
			restore = &s
		}
		listing, err := svc.Maintenance.EndMaintenanceMode(ctx, input.UnitID, input.ActorID, restore, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &EndMaintenanceOutput{Body: toListingResponse(listing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-maintenance-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/units/{unitId}/maintenance",
		Summary:     "Get a unit's maintenance-mode status",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *MaintenanceStatusInput) (*MaintenanceStatusOutput, error) {
		status, err := svc.Maintenance.GetMaintenanceListingStatus(ctx, input.UnitID)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &MaintenanceStatusOutput{}
		out.Body.UnitID = status.UnitID
		out.Body.IsInMaintenance = status.IsInMaintenance
		out.Body.RequestID = status.RequestID
		out.Body.CanRestore = status.CanRestore
		if status.EstimatedEndDate != nil {
			out.Body.EstimatedEndDate = status.EstimatedEndDate.Format(timeFormat)
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "units-in-maintenance",
		Method:      http.MethodGet,
		Path:        "/api/v1/organizations/{orgId}/maintenance",
		Summary:     "List an organization's units in maintenance mode",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *UnitsInMaintenanceInput) (*UnitsInMaintenanceOutput, error) {
		listings, err := svc.Maintenance.UnitsInMaintenanceMode(ctx, input.OrgID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ListingResponse, len(listings))
		for i, l := range listings {
			resp[i] = toListingResponse(l)
		}
		return &UnitsInMaintenanceOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "maintenance-ticket-event",
		Method:      http.MethodPost,
		Path:        "/api/v1/maintenance-tickets/events",
		Summary:     "Ingest a maintenance ticket status change",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *TicketEventInput) (*TicketEventOutput, error) {
		ticket := domain.Ticket{
			ID:          input.Body.TicketID,
			UnitID:      input.Body.UnitID,
			Priority:    domain.TicketPriority(input.Body.Priority),
			Title:       input.Body.Title,
			Description: input.Body.Description,
		}
		if err := svc.Maintenance.HandleTicketStatusChange(ctx, ticket, input.Body.Status, input.ActorID); err != nil {
			return nil, toHumaError(err)
		}
		out := &TicketEventOutput{}
		out.Body.Accepted = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-eligibility",
		Method:      http.MethodGet,
		Path:        "/api/v1/units/{unitId}/eligibility",
		Summary:     "Check if a unit accepts tenant applications",
		Tags:        []string{"Eligibility"},
	}, func(ctx context.Context, input *EligibilityInput) (*EligibilityOutput, error) {
		e, err := svc.Eligibility.CheckApplicationEligibility(ctx, input.UnitID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &EligibilityOutput{Body: toEligibilityResponse(e)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-multiple-eligibility",
		Method:      http.MethodPost,
		Path:        "/api/v1/eligibility/check",
		Summary:     "Check eligibility for many units at once",
		Tags:        []string{"Eligibility"},
	}, func(ctx context.Context, input *MultiEligibilityInput) (*MultiEligibilityOutput, error) {
		results, err := svc.Eligibility.CheckMultipleUnitsEligibility(ctx, input.Body.UnitIDs)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]EligibilityResponse, len(results))
		for i, e := range results {
			resp[i] = toEligibilityResponse(e)
		}
		return &MultiEligibilityOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-audit-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/units/{unitId}/audit",
		Summary:     "Get a unit's audit trail, newest first",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
		entries, err := svc.Listings.History(ctx, input.UnitID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AuditEntryResponse, len(entries))
		for i, e := range entries {
			resp[i] = AuditEntryResponse{
				ID:             e.ID,
				UnitID:         e.UnitID,
				Action:         string(e.Action),
				PreviousStatus: string(e.PreviousStatus),
				NewStatus:      string(e.NewStatus),
				ActorID:        e.ActorID,
				Timestamp:      e.Timestamp.Format(timeFormat),
				Changes:        e.Changes,
			}
			if e.ListingID != nil {
				resp[i].ListingID = *e.ListingID
			}
		}
		return &HistoryOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-audit-statistics",
		Method:      http.MethodGet,
		Path:        "/api/v1/audit/statistics",
		Summary:     "Aggregate statistics over the audit trail",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *StatisticsInput) (*StatisticsOutput, error) {
		filter := domain.StatisticsFilter{
			UnitID:  input.UnitID,
			ActorID: input.ActorID,
			Action:  domain.AuditAction(input.Action),
		}
		if input.Since != "" {
			t, err := time.Parse(timeFormat, input.Since)
			if err != nil {
				return nil, toHumaError(&domain.ValidationError{Field: "since", Reason: "not an ISO 8601 timestamp"})
			}
			filter.Since = &t
		}
		if input.Until != "" {
			t, err := time.Parse(timeFormat, input.Until)
			if err != nil {
				return nil, toHumaError(&domain.ValidationError{Field: "until", Reason: "not an ISO 8601 timestamp"})
			}
			filter.Until = &t
		}

		stats, err := svc.Statistics.Statistics(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &StatisticsOutput{}
		out.Body.TotalEntries = stats.TotalEntries
		out.Body.ActionBreakdown = make(map[string]int, len(stats.ActionBreakdown))
		for k, v := range stats.ActionBreakdown {
			out.Body.ActionBreakdown[string(k)] = v
		}
		out.Body.StatusBreakdown = make(map[string]int, len(stats.StatusBreakdown))
		for k, v := range stats.StatusBreakdown {
			out.Body.StatusBreakdown[string(k)] = v
		}
		out.Body.UserActivity = stats.UserActivity
		for _, b := range stats.Timeline {
			out.Body.Timeline = append(out.Body.Timeline, struct {
				Day   string `json:"day"`
				Count int    `json:"count"`
			}{Day: b.Day, Count: b.Count})
		}
		return out, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors via the error
// taxonomy: classify first, then map type to status class.
func toHumaError(err error) error {
	classified := domain.Classify(err)
	return huma.NewError(classified.HTTPStatus(), classified.Message, errors.New(classified.Details))
}
