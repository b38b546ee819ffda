package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Repositories bundles the three stores that share one SQLite database.
// Listing mutations and their audit entries commit in one transaction, so
// all repositories must sit on the same connection.
type Repositories struct {
	Listings *ListingRepository
	Units    *UnitRepository
	Audit    *AuditRepository

	db *sql.DB
}

// Open opens a SQLite database, runs migrations, and returns ready repositories.
func Open(dataSourceName string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL for concurrent reads; foreign keys are off by default in SQLite.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns ready repositories. Use this when the *sql.DB has been
// pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Repositories, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Repositories{
		Listings: &ListingRepository{db: db},
		Units:    &UnitRepository{db: db},
		Audit:    &AuditRepository{db: db},
		db:       db,
	}, nil
}

// Close closes the underlying database connection.
func (r *Repositories) Close() error {
	return r.db.Close()
}

// DB returns the underlying database connection for use by other adapters
// (e.g., river).
func (r *Repositories) DB() *sql.DB {
	return r.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
