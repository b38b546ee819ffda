package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/listiq/internal/domain"
)

// Compile-time check: ListingRepository implements domain.ListingRepository.
var _ domain.ListingRepository = (*ListingRepository)(nil)

// ListingRepository implements domain.ListingRepository using SQLite.
// Every write commits the listing mutation and its audit entry in a single
// transaction.
type ListingRepository struct {
	db *sql.DB
}

const listingColumns = `id, unit_id, status, title, description, price, available_from, expires_at, created_at, updated_at`

func (r *ListingRepository) Create(ctx context.Context, l domain.Listing, entry domain.AuditEntry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO listings (`+listingColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.UnitID, string(l.Status), l.Title, l.Description, l.Price,
			l.AvailableFrom.Format(timeFormat),
			nullableTime(l.ExpiresAt),
			l.CreatedAt.Format(timeFormat),
			l.UpdatedAt.Format(timeFormat),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return &domain.ListingConflictError{UnitID: l.UnitID, ListingID: l.ID}
			}
			return fmt.Errorf("inserting listing: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE units SET listing_id = ? WHERE id = ?`, l.ID, l.UnitID,
		); err != nil {
			return fmt.Errorf("linking listing to unit: %w", err)
		}

		return appendEntry(ctx, tx, entry)
	})
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	return scanListing(r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id,
	))
}

func (r *ListingRepository) GetByUnit(ctx context.Context, unitID string) (domain.Listing, error) {
	return scanListing(r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE unit_id = ?`, unitID,
	))
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, l domain.Listing, entry domain.AuditEntry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE listings SET status = ?, updated_at = ? WHERE id = ?`,
			string(l.Status), l.UpdatedAt.Format(timeFormat), l.ID,
		)
		if err != nil {
			return fmt.Errorf("updating listing: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return domain.ErrListingNotFound
		}

		return appendEntry(ctx, tx, entry)
	})
}

func (r *ListingRepository) Remove(ctx context.Context, unitID string, entry domain.AuditEntry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE units SET listing_id = NULL WHERE id = ?`, unitID,
		); err != nil {
			return fmt.Errorf("clearing unit listing reference: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM listings WHERE unit_id = ?`, unitID,
		)
		if err != nil {
			return fmt.Errorf("deleting listing: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return domain.ErrListingNotFound
		}

		return appendEntry(ctx, tx, entry)
	})
}

func (r *ListingRepository) ListByStatus(ctx context.Context, orgID string, status domain.Status) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.unit_id, l.status, l.title, l.description, l.price,
		        l.available_from, l.expires_at, l.created_at, l.updated_at
		 FROM listings l
		 JOIN units u ON u.id = l.unit_id
		 WHERE u.org_id = ? AND l.status = ?
		 ORDER BY l.updated_at DESC`,
		orgID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("listing by status: %w", err)
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListingFromRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

func (r *ListingRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeFormat)
}

func scanListing(row *sql.Row) (domain.Listing, error) {
	var l domain.Listing
	var status, availableFrom, createdAt, updatedAt string
	var expiresAt sql.NullString

	err := row.Scan(&l.ID, &l.UnitID, &status, &l.Title, &l.Description, &l.Price,
		&availableFrom, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("scanning listing: %w", err)
	}

	fillListing(&l, status, availableFrom, expiresAt, createdAt, updatedAt)
	return l, nil
}

func scanListingFromRows(rows *sql.Rows) (domain.Listing, error) {
	var l domain.Listing
	var status, availableFrom, createdAt, updatedAt string
	var expiresAt sql.NullString

	err := rows.Scan(&l.ID, &l.UnitID, &status, &l.Title, &l.Description, &l.Price,
		&availableFrom, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("scanning listing row: %w", err)
	}

	fillListing(&l, status, availableFrom, expiresAt, createdAt, updatedAt)
	return l, nil
}

func fillListing(l *domain.Listing, status, availableFrom string, expiresAt sql.NullString, createdAt, updatedAt string) {
	l.Status = domain.Status(status)
	l.AvailableFrom, _ = time.Parse(timeFormat, availableFrom)
	if expiresAt.Valid {
		if t, err := time.Parse(timeFormat, expiresAt.String); err == nil {
			l.ExpiresAt = &t
		}
	}
	l.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	l.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
}
