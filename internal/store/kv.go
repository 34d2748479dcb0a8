package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gurukul/gdl/internal/model"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("not found")

// The four persisted keys of the client state. Each is read independently
// at startup and written independently on every relevant mutation.
const (
	KeyReplica    = "replica"
	KeyCheckpoint = "checkpoint"
	KeyQueue      = "queue"
	KeySession    = "session"
)

// Get returns the value stored under key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Put writes value under key. The write runs in a transaction so readers
// never observe a partial value; the previous value stays visible until the
// commit.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put %q: begin tx: %w", key, err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put %q: commit: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Checkpoint returns the last server-issued sync timestamp, or 0 if no
// delta pull has ever completed.
func (s *Store) Checkpoint(ctx context.Context) (int64, error) {
	value, err := s.Get(ctx, KeyCheckpoint)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("checkpoint: parse %q: %w", value, err)
	}
	return n, nil
}

// SetCheckpoint persists the server-issued sync timestamp.
func (s *Store) SetCheckpoint(ctx context.Context, ts int64) error {
	return s.Put(ctx, KeyCheckpoint, []byte(strconv.FormatInt(ts, 10)))
}

// Session returns the stored session user, or ErrNotFound when nobody is
// logged in on this device.
func (s *Store) Session(ctx context.Context) (model.User, error) {
	value, err := s.Get(ctx, KeySession)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := json.Unmarshal(value, &user); err != nil {
		return model.User{}, fmt.Errorf("session: %w", err)
	}
	return user, nil
}

// SetSession persists the session user after a successful login.
func (s *Store) SetSession(ctx context.Context, user model.User) error {
	value, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return s.Put(ctx, KeySession, value)
}

// ClearSession removes the session user (logout).
func (s *Store) ClearSession(ctx context.Context) error {
	return s.Delete(ctx, KeySession)
}
