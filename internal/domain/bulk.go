package domain

// BulkAction is one verb a bulk operation can apply to a unit.
type BulkAction string

const (
	BulkList     BulkAction = "list"
	BulkUnlist   BulkAction = "unlist"
	BulkSuspend  BulkAction = "suspend"
	BulkActivate BulkAction = "activate"
)

// MaxBatchSize caps how many operations one bulk request may carry.
const MaxBatchSize = 50

// BulkOperation is one unit's requested action within a batch. Request
// scoped, never persisted.
type BulkOperation struct {
	UnitID  string
	Action  BulkAction
	Payload *ListingPayload
}

// BulkFailure records why one unit's operation failed.
type BulkFailure struct {
	UnitID string
	Error  string
}

// BulkSummary is the per-batch success/failure breakdown.
// Succeeded + Failed always equals Total.
type BulkSummary struct {
	Total     int
	Succeeded int
	Failed    int
}

// BulkResult aggregates per-unit outcomes of a batch. Successful and the
// unit ids inside Failed partition the batch's input unit ids.
type BulkResult struct {
	Successful []string
	Failed     []BulkFailure
	Summary    BulkSummary
}

// RollbackThreshold is the failure rate at or above which a batch's
// successful creations are compensated and the batch reported as failed.
const RollbackThreshold = 0.5

// ValidateBatch checks the whole-batch input shape. A non-nil error means
// no per-unit processing happens at all.
func ValidateBatch(ops []BulkOperation) error {
	if len(ops) == 0 {
		return &ValidationError{Field: "operations", Reason: "batch is empty"}
	}
	if len(ops) > MaxBatchSize {
		return &ValidationError{Field: "operations", Reason: "batch exceeds maximum size"}
	}

	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		if op.UnitID == "" {
			return &ValidationError{Field: "unitId", Reason: "missing unit id"}
		}
		if seen[op.UnitID] {
			return &ValidationError{Field: "unitId", Reason: "duplicate unit id " + op.UnitID}
		}
		seen[op.UnitID] = true

		if op.Action == BulkList && op.Payload == nil {
			return &ValidationError{Field: "payload", Reason: "list action requires a listing payload"}
		}
	}
	return nil
}
