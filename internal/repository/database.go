package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var (
	// ErrStorageUnavailable is returned when the store cannot be opened or initialized
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageWrite is returned when a batch cannot be committed
	ErrStorageWrite = errors.New("storage write failed")
)

// Dialect identifies the SQL backend behind a Database
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectFor picks the backend for a storage location.
// postgres:// and postgresql:// URLs select PostgreSQL, anything else is a SQLite path.
func DialectFor(location string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Database holds the connection pool and provides access to repositories
type Database struct {
	DB      *sql.DB
	Dialect Dialect

	// Repositories
	Players   *PlayerRepository
	Countries *CountryTrackerRepository
}

// Open opens the store at location and makes sure both tables exist.
// Safe to call repeatedly: schema creation never touches existing rows.
func Open(ctx context.Context, location string) (*Database, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("%w: storage location is required", ErrStorageUnavailable)
	}

	dialect := DialectFor(location)

	var (
		sqlDB *sql.DB
		err   error
	)
	switch dialect {
	case DialectPostgres:
		sqlDB, err = sql.Open("pgx", location)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open postgres: %w", ErrStorageUnavailable, err)
		}
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(time.Hour)
	default:
		dsn := filepath.Clean(location) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
		sqlDB, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open sqlite: %w", ErrStorageUnavailable, err)
		}
		// One writer at a time; a single connection keeps transactions simple.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrStorageUnavailable, err)
	}

	db := &Database{
		DB:      sqlDB,
		Dialect: dialect,
	}
	db.Players = &PlayerRepository{db: db}
	db.Countries = &CountryTrackerRepository{db: db}

	if err := db.ensureSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	log.Debug().
		Str("dialect", string(dialect)).
		Msg("Database opened")

	return db, nil
}

// ensureSchema creates the players and country_tracker tables if missing
func (db *Database) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(db.Dialect) {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (db *Database) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Debug().Msg("Database closed")
	return nil
}

// Health checks if the database is reachable
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// rebind rewrites ? placeholders into the dialect's form
func (db *Database) rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
