// Package db opens the SQLite database backing taskdock's persistent
// side-caches.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema/schema.sql
var schemaSQL string

const (
	maxRetries  = 5
	initialWait = 100 * time.Millisecond
)

// OpenOptions configures the database connection pool.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
}

// DefaultOpenOptions returns the connection settings used when the config
// file does not override them.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		BusyTimeout:  5000,
	}
}

// DB wraps a SQL database connection with retry logic.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection with connection pooling and retry
// logic. The database file is created in the specified data directory.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	if opts.MaxOpenConns <= 0 {
		opts = DefaultOpenOptions()
	}

	dbPath := filepath.Join(dataDir, "taskdock.db")

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, opts.BusyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.pingWithRetry(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := conn.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return db, nil
}

// Conn exposes the underlying connection for stores.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// pingWithRetry attempts to ping the database with exponential backoff.
func (db *DB) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	for i := 0; i < maxRetries; i++ {
		if err := db.conn.PingContext(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}

	return fmt.Errorf("ping database after %d retries", maxRetries)
}
