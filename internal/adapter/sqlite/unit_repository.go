package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/listiq/internal/domain"
)

// Compile-time check: UnitRepository implements domain.UnitRepository.
var _ domain.UnitRepository = (*UnitRepository)(nil)

// UnitRepository reads units and lease state from SQLite. Units and leases
// are written by other subsystems; this side only consumes them, plus the
// seeding helpers used by tests and local setups.
type UnitRepository struct {
	db *sql.DB
}

func (r *UnitRepository) GetByID(ctx context.Context, id string) (domain.Unit, error) {
	var u domain.Unit
	var listingID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, org_id, property_name, label, market_rent, listing_id
		 FROM units WHERE id = ?`, id,
	).Scan(&u.ID, &u.OrgID, &u.PropertyName, &u.Label, &u.MarketRent, &listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Unit{}, domain.ErrUnitNotFound
		}
		return domain.Unit{}, fmt.Errorf("scanning unit: %w", err)
	}

	if listingID.Valid {
		u.ListingID = &listingID.String
	}
	return u, nil
}

func (r *UnitRepository) ActiveLease(ctx context.Context, unitID string) (*domain.Lease, error) {
	var l domain.Lease
	var status, startDate string
	var endDate sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, unit_id, status, start_date, end_date
		 FROM leases WHERE unit_id = ? AND status = ?`,
		unitID, string(domain.LeaseActive),
	).Scan(&l.ID, &l.UnitID, &status, &startDate, &endDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning lease: %w", err)
	}

	l.Status = domain.LeaseStatus(status)
	l.StartDate, _ = time.Parse(timeFormat, startDate)
	if endDate.Valid {
		if t, err := time.Parse(timeFormat, endDate.String); err == nil {
			l.EndDate = &t
		}
	}
	return &l, nil
}

// SeedUnit inserts a unit row. The unit catalog belongs to another
// subsystem in production; local setups and tests need a way in.
func (r *UnitRepository) SeedUnit(ctx context.Context, u domain.Unit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO units (id, org_id, property_name, label, market_rent, listing_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.OrgID, u.PropertyName, u.Label, u.MarketRent, u.ListingID,
	)
	if err != nil {
		return fmt.Errorf("inserting unit: %w", err)
	}
	return nil
}

// SeedLease inserts a lease row, for the same reason as SeedUnit.
func (r *UnitRepository) SeedLease(ctx context.Context, l domain.Lease) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leases (id, unit_id, status, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.UnitID, string(l.Status),
		l.StartDate.Format(timeFormat),
		nullableTime(l.EndDate),
	)
	if err != nil {
		return fmt.Errorf("inserting lease: %w", err)
	}
	return nil
}
