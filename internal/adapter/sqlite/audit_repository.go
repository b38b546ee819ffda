package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/listiq/internal/domain"
)

// Compile-time check: AuditRepository implements domain.AuditRepository.
var _ domain.AuditRepository = (*AuditRepository)(nil)

// AuditRepository is the append-only transition log in SQLite. Rows are
// only ever inserted; statistics aggregate over the rows, never over
// side counters, so a recompute always reconciles.
type AuditRepository struct {
	db *sql.DB
}

// appendEntry inserts an audit row inside an existing transaction. Shared
// with the listing repository so mutation + audit commit together.
func appendEntry(ctx context.Context, tx *sql.Tx, e domain.AuditEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_entries
		 (id, unit_id, listing_id, action, previous_status, new_status, actor_id, timestamp, changes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UnitID, e.ListingID, string(e.Action),
		string(e.PreviousStatus), string(e.NewStatus),
		e.ActorID, e.Timestamp.Format(timeFormat), e.Changes,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) Append(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_entries
		 (id, unit_id, listing_id, action, previous_status, new_status, actor_id, timestamp, changes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UnitID, e.ListingID, string(e.Action),
		string(e.PreviousStatus), string(e.NewStatus),
		e.ActorID, e.Timestamp.Format(timeFormat), e.Changes,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// History returns a unit's entries newest first. Ordered by rowid:
// timestamps have second resolution, so same-second bursts would come back
// in arbitrary order; insertion order is exact for an append-only table.
func (r *AuditRepository) History(ctx context.Context, unitID string) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, unit_id, listing_id, action, previous_status, new_status, actor_id, timestamp, changes
		 FROM audit_entries
		 WHERE unit_id = ?
		 ORDER BY rowid DESC`, unitID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying audit history: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var listingID sql.NullString
		var action, prev, next, ts string

		if err := rows.Scan(&e.ID, &e.UnitID, &listingID, &action, &prev, &next, &e.ActorID, &ts, &e.Changes); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		if listingID.Valid {
			e.ListingID = &listingID.String
		}
		e.Action = domain.AuditAction(action)
		e.PreviousStatus = domain.Status(prev)
		e.NewStatus = domain.Status(next)
		e.Timestamp, _ = time.Parse(timeFormat, ts)
		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *AuditRepository) Statistics(ctx context.Context, filter domain.StatisticsFilter) (domain.Statistics, error) {
	where, args := buildFilter(filter)

	stats := domain.Statistics{
		ActionBreakdown: make(map[domain.AuditAction]int),
		StatusBreakdown: make(map[domain.Status]int),
		UserActivity:    make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_entries`+where, args...,
	).Scan(&stats.TotalEntries); err != nil {
		return domain.Statistics{}, fmt.Errorf("counting audit entries: %w", err)
	}

	if err := r.groupCount(ctx, `action`, where, args, func(key string, n int) {
		stats.ActionBreakdown[domain.AuditAction(key)] = n
	}); err != nil {
		return domain.Statistics{}, err
	}

	if err := r.groupCount(ctx, `new_status`, where, args, func(key string, n int) {
		if key != "" {
			stats.StatusBreakdown[domain.Status(key)] = n
		}
	}); err != nil {
		return domain.Statistics{}, err
	}

	if err := r.groupCount(ctx, `actor_id`, where, args, func(key string, n int) {
		stats.UserActivity[key] = n
	}); err != nil {
		return domain.Statistics{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT date(timestamp), COUNT(*) FROM audit_entries`+where+
			` GROUP BY date(timestamp) ORDER BY date(timestamp)`, args...,
	)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("querying timeline: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.TimelineBucket
		if err := rows.Scan(&b.Day, &b.Count); err != nil {
			return domain.Statistics{}, fmt.Errorf("scanning timeline bucket: %w", err)
		}
		stats.Timeline = append(stats.Timeline, b)
	}

	return stats, rows.Err()
}

func (r *AuditRepository) groupCount(ctx context.Context, column, where string, args []any, add func(key string, n int)) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM audit_entries`+where+` GROUP BY `+column, args...,
	)
	if err != nil {
		return fmt.Errorf("grouping by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning %s group: %w", column, err)
		}
		add(key, n)
	}
	return rows.Err()
}

func buildFilter(filter domain.StatisticsFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.UnitID != "" {
		clauses = append(clauses, "unit_id = ?")
		args = append(args, filter.UnitID)
	}
	if filter.ActorID != "" {
		clauses = append(clauses, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.Format(timeFormat))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.Format(timeFormat))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}
