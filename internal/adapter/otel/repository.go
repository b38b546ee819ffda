package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/listiq/internal/domain"
)

const tracerName = "github.com/neomorfeo/listiq/internal/adapter/otel"

// TracingListingRepository wraps a domain.ListingRepository with
// OpenTelemetry tracing. Each method creates a span with semantic
// attributes and records errors.
type TracingListingRepository struct {
	next   domain.ListingRepository
	tracer trace.Tracer
}

// Compile-time check: TracingListingRepository implements domain.ListingRepository.
var _ domain.ListingRepository = (*TracingListingRepository)(nil)

// NewTracingListingRepository creates a tracing decorator around the given repository.
func NewTracingListingRepository(next domain.ListingRepository) *TracingListingRepository {
	return &TracingListingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingListingRepository) Create(ctx context.Context, listing domain.Listing, entry domain.AuditEntry) error {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.Create",
		trace.WithAttributes(
			attribute.String("listing.id", listing.ID),
			attribute.String("unit.id", listing.UnitID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, listing, entry)
	recordError(span, err)
	return err
}

func (r *TracingListingRepository) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.GetByID",
		trace.WithAttributes(attribute.String("listing.id", id)),
	)
	defer span.End()

	listing, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return listing, err
}

func (r *TracingListingRepository) GetByUnit(ctx context.Context, unitID string) (domain.Listing, error) {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.GetByUnit",
		trace.WithAttributes(attribute.String("unit.id", unitID)),
	)
	defer span.End()

	listing, err := r.next.GetByUnit(ctx, unitID)
	recordError(span, err)
	return listing, err
}

func (r *TracingListingRepository) UpdateStatus(ctx context.Context, listing domain.Listing, entry domain.AuditEntry) error {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("listing.id", listing.ID),
			attribute.String("listing.status", string(listing.Status)),
			attribute.String("audit.action", string(entry.Action)),
		),
	)
	defer span.End()

	err := r.next.UpdateStatus(ctx, listing, entry)
	recordError(span, err)
	return err
}

func (r *TracingListingRepository) Remove(ctx context.Context, unitID string, entry domain.AuditEntry) error {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.Remove",
		trace.WithAttributes(attribute.String("unit.id", unitID)),
	)
	defer span.End()

	err := r.next.Remove(ctx, unitID, entry)
	recordError(span, err)
	return err
}

func (r *TracingListingRepository) ListByStatus(ctx context.Context, orgID string, status domain.Status) ([]domain.Listing, error) {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.ListByStatus",
		trace.WithAttributes(
			attribute.String("org.id", orgID),
			attribute.String("listing.status", string(status)),
		),
	)
	defer span.End()

	listings, err := r.next.ListByStatus(ctx, orgID, status)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(listings)))
	}
	return listings, err
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
