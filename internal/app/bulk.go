package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/listiq/internal/domain"
)

// BulkService applies a batch of independent listing operations, reporting
// a per-unit breakdown. When half or more of the batch fails it compensates
// the listings it created and reports the whole batch as failed.
type BulkService struct {
	svc *ListingService
}

// NewBulkService creates a bulk orchestrator over the listing service.
func NewBulkService(svc *ListingService) *BulkService {
	return &BulkService{svc: svc}
}

// BulkUpdateListings validates and executes a batch. Whole-batch validation
// failures return before any unit is touched; per-unit failures are
// recorded in the result and never abort the batch. Cancellation stops
// processing between units; it does not trigger rollback (only the
// failure-rate path does), so already-applied work survives a cancel.
func (b *BulkService) BulkUpdateListings(ctx context.Context, ops []domain.BulkOperation, actorID, orgID string) (domain.BulkResult, error) {
	if err := domain.ValidateBatch(ops); err != nil {
		return domain.BulkResult{}, err
	}

	result := domain.BulkResult{Summary: domain.BulkSummary{Total: len(ops)}}
	var created []string

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			for _, rest := range ops[i:] {
				result.Failed = append(result.Failed, domain.BulkFailure{
					UnitID: rest.UnitID,
					Error:  "batch cancelled before processing",
				})
			}
			result.Summary.Succeeded = len(result.Successful)
			result.Summary.Failed = len(result.Failed)
			return result, fmt.Errorf("bulk operation cancelled: %w", err)
		}

		if err := b.execute(ctx, op, actorID); err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{UnitID: op.UnitID, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, op.UnitID)
		if op.Action == domain.BulkList {
			created = append(created, op.UnitID)
		}
	}

	result.Summary.Succeeded = len(result.Successful)
	result.Summary.Failed = len(result.Failed)

	failureRate := float64(result.Summary.Failed) / float64(result.Summary.Total)
	if failureRate >= domain.RollbackThreshold {
		slog.WarnContext(ctx, "bulk failure rate crossed rollback threshold",
			"org_id", orgID,
			"failure_rate", failureRate,
			"created", len(created),
		)
		return result, b.rollback(ctx, created, actorID, failureRate)
	}

	return result, nil
}

// execute runs one unit's operation through the listing service.
func (b *BulkService) execute(ctx context.Context, op domain.BulkOperation, actorID string) error {
	switch op.Action {
	case domain.BulkList:
		_, err := b.svc.create(ctx, op.UnitID, *op.Payload, actorID, domain.AuditBulkListingCreated)
		return err
	case domain.BulkUnlist:
		_, err := b.svc.RemoveListing(ctx, op.UnitID, actorID, "bulk unlist operation")
		return err
	case domain.BulkSuspend:
		_, err := b.svc.RemoveListing(ctx, op.UnitID, actorID, "bulk suspend operation")
		return err
	case domain.BulkActivate:
		listing, err := b.svc.GetListingByUnit(ctx, op.UnitID)
		if err != nil {
			return err
		}
		_, err = b.svc.UpdateListingStatus(ctx, listing.ID, domain.StatusActive, actorID, "bulk activate operation")
		return err
	default:
		return fmt.Errorf("unknown action %q", op.Action)
	}
}

// rollback compensates the listings this batch created. The two outcomes
// carry distinct messages: callers tell a clean rollback apart from a
// rollback that itself failed.
func (b *BulkService) rollback(ctx context.Context, created []string, actorID string, failureRate float64) error {
	var failures []string
	for _, unitID := range created {
		if _, err := b.svc.RemoveListing(ctx, unitID, actorID, "bulk rollback"); err != nil {
			failures = append(failures, unitID)
			slog.ErrorContext(ctx, "bulk rollback compensation failed",
				"unit_id", unitID,
				"error", err,
			)
		}
	}

	message := fmt.Sprintf(
		"bulk operation failed (%.0f%% failure rate); rolled back %d created listings",
		failureRate*100, len(created),
	)
	if len(failures) > 0 {
		message = fmt.Sprintf(
			"bulk operation failed (%.0f%% failure rate); rollback also failed for %d of %d created listings",
			failureRate*100, len(failures), len(created),
		)
	}

	return &domain.Error{
		Type:      domain.ErrUnknown,
		Severity:  domain.SeverityCritical,
		Code:      "TRANSACTION_FAILED",
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
