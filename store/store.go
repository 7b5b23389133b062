package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var ErrEmptyDSN = errors.New("empty database dsn")

type dialect int

const (
	dialectPostgres dialect = iota + 1
	dialectSQLite
)

// placeholder returns the n-th (1-based) bind parameter.
func (d dialect) placeholder(n int) string {
	if d == dialectPostgres {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}

// Store wraps the database holding company tables, location summaries and
// the run log.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to PostgreSQL for postgres:// and postgresql:// DSNs and to
// an SQLite file otherwise. The schema is created when missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	driver, source, d := parseDSN(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if d == dialectSQLite {
		// one writer at a time, and :memory: databases must not be split
		// across connections
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	s := &Store{db: db, dialect: d}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

func parseDSN(dsn string) (driver, source string, d dialect) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn, dialectPostgres
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), dialectSQLite
	default:
		return "sqlite", dsn, dialectSQLite
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		categories INTEGER NOT NULL DEFAULT 0,
		records INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		run_id TEXT NOT NULL,
		category TEXT NOT NULL,
		position INTEGER NOT NULL,
		value TEXT NOT NULL,
		unp TEXT NOT NULL,
		registration_date TEXT NOT NULL,
		removal_date TEXT NOT NULL,
		status TEXT NOT NULL,
		full_name_ru TEXT NOT NULL,
		trade_name_ru TEXT NOT NULL,
		address TEXT NOT NULL,
		oked TEXT NOT NULL,
		oked_name TEXT NOT NULL,
		PRIMARY KEY (run_id, category, position)
	)`,
	`CREATE TABLE IF NOT EXISTS location_summary (
		run_id TEXT NOT NULL,
		category TEXT NOT NULL,
		rank INTEGER NOT NULL,
		label TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, category, rank)
	)`,
}
