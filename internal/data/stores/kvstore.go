// Package stores contains SQLite-backed implementations of the storage
// interfaces in internal/core.
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskdock/taskdock/internal/core/kv"
	"github.com/taskdock/taskdock/internal/data/db"
)

// KVStore implements kv.KV using SQLite.
type KVStore struct {
	db *db.DB
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db}
}

// Get retrieves and deserializes a value by key.
// Returns an error wrapping sql.ErrNoRows if the key does not exist.
// Expired entries are lazily deleted and treated as missing.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if isExpired(expiresAt) {
		_ = s.deleteKey(ctx, key)
		return fmt.Errorf("kv get %q: %w", key, sql.ErrNoRows)
	}

	if err := json.Unmarshal(value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}

	return nil
}

// Set stores a value with no expiry.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	return s.set(ctx, key, value, sql.NullInt64{})
}

// SetTTL stores a value that expires after the given duration.
func (s *KVStore) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).UnixNano()
	return s.set(ctx, key, value, sql.NullInt64{Int64: expiresAt, Valid: true})
}

// Delete removes a key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.deleteKey(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Has returns whether a key exists (and is not expired).
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	var expiresAt sql.NullInt64
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT expires_at FROM kv WHERE key = ?`, key,
	).Scan(&expiresAt)
	if IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv has %q: %w", key, err)
	}

	if isExpired(expiresAt) {
		_ = s.deleteKey(ctx, key)
		return false, nil
	}

	return true, nil
}

// ListKeys returns all non-expired keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT key FROM kv WHERE expires_at IS NULL OR expires_at > ? ORDER BY key`,
		time.Now().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("kv list keys scan: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// SweepExpired deletes all expired entries. Called periodically by the
// background sweeper.
func (s *KVStore) SweepExpired(ctx context.Context) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("kv sweep expired: %w", err)
	}
	return nil
}

func (s *KVStore) set(ctx context.Context, key string, value any, expiresAt sql.NullInt64) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := time.Now().UnixNano()
	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO kv (key, value, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		key, raw, expiresAt, now, now,
	)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) deleteKey(ctx context.Context, key string) error {
	_, err := s.db.Conn().ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func isExpired(expiresAt sql.NullInt64) bool {
	return expiresAt.Valid && expiresAt.Int64 <= time.Now().UnixNano()
}
