package domain

import (
	"fmt"
	"time"
)

// Status represents the marketplace visibility state of a listing.
// A unit with no listing at all is implicitly StatusPrivate.
type Status string

const (
	StatusPrivate     Status = "private"
	StatusPending     Status = "pending"
	StatusComingSoon  Status = "coming_soon"
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
	StatusMaintenance Status = "maintenance"
	StatusExpired     Status = "expired"
)

// Statuses lists every valid listing status. Consumed by the FSM guard
// adapter to generate the transition graph.
var Statuses = []Status{
	StatusPrivate,
	StatusPending,
	StatusComingSoon,
	StatusActive,
	StatusSuspended,
	StatusMaintenance,
	StatusExpired,
}

// ValidStatus reports whether s is a member of the closed status set.
func ValidStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Listing is the marketplace-visible record for a unit. It is created by
// the listing service, mutated only through status transitions, and removed
// as a whole; at most one listing exists per unit at a time.
type Listing struct {
	ID            string
	UnitID        string
	Status        Status
	Title         string
	Description   string
	Price         float64
	AvailableFrom time.Time
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListingPayload carries caller-supplied listing fields. Zero values are
// filled with defaults synthesized from the unit and property.
type ListingPayload struct {
	Title         string
	Description   string
	Price         float64
	AvailableFrom time.Time
	ExpiresAt     *time.Time
}

// NewListing creates an active listing for a unit, filling payload gaps
// from the unit's own data.
func NewListing(id string, unit Unit, p ListingPayload) (Listing, error) {
	title := p.Title
	if title == "" {
		title = fmt.Sprintf("Unit %s at %s", unit.Label, unit.PropertyName)
	}
	description := p.Description
	if description == "" {
		description = fmt.Sprintf("Rental unit %s, property %s", unit.Label, unit.PropertyName)
	}
	price := p.Price
	if price == 0 {
		price = unit.MarketRent
	}
	if price <= 0 {
		return Listing{}, &ValidationError{Field: "price", Reason: "must be positive"}
	}

	availableFrom := p.AvailableFrom
	if availableFrom.IsZero() {
		availableFrom = time.Now().UTC()
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(availableFrom) {
		return Listing{}, &ValidationError{Field: "expiresAt", Reason: "must be after availability date"}
	}

	now := time.Now().UTC()
	return Listing{
		ID:            id,
		UnitID:        unit.ID,
		Status:        StatusActive,
		Title:         title,
		Description:   description,
		Price:         price,
		AvailableFrom: availableFrom,
		ExpiresAt:     p.ExpiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
