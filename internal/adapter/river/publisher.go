package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/listiq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// ListingEventArgs carries the data needed to process a listing lifecycle
// event asynchronously. River serializes this as JSON into its job queue
// table. It includes a snapshot of the listing at publish time, so the
// worker never needs to query the database.
type ListingEventArgs struct {
	Action    string  `json:"action"`
	ListingID string  `json:"listing_id"`
	UnitID    string  `json:"unit_id"`
	Status    string  `json:"status"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (ListingEventArgs) Kind() string { return "listing.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a listing event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, action domain.AuditAction, listing domain.Listing) error {
	_, err := p.client.Insert(ctx, ListingEventArgs{
		Action:    string(action),
		ListingID: listing.ID,
		UnitID:    listing.UnitID,
		Status:    string(listing.Status),
		Title:     listing.Title,
		Price:     listing.Price,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing listing event job: %w", err)
	}
	return nil
}
