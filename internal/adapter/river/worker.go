package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/listiq/internal/domain"
)

// NotificationWorker processes listing event jobs from the River queue.
// It logs every event and flags the ones that should fan out to tenant
// notifications; actual delivery (mail, push) lives outside this service.
type NotificationWorker struct {
	river.WorkerDefaults[ListingEventArgs]
}

// Work processes a single listing event job.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[ListingEventArgs]) error {
	notify := domain.AuditAction(job.Args.Action) == domain.AuditMaintenanceStarted ||
		domain.AuditAction(job.Args.Action) == domain.AuditMaintenanceEnded

	slog.InfoContext(ctx, "processing listing event",
		"action", job.Args.Action,
		"listing_id", job.Args.ListingID,
		"unit_id", job.Args.UnitID,
		"status", job.Args.Status,
		"notify_tenants", notify,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
