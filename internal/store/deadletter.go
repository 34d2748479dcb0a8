package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gurukul/gdl/internal/model"
)

// DeadLetter is an outbound envelope abandoned after repeated remote
// rejection, retained for inspection.
type DeadLetter struct {
	ID          int64
	Fingerprint string
	Envelope    model.Envelope
	Attempts    int
	Reason      string
	FailedAt    time.Time
}

// AppendDeadLetter records an abandoned envelope.
// Uses ON CONFLICT(fingerprint) DO NOTHING for idempotency - parking the
// same envelope twice (e.g. after a crash between park and dequeue) is
// silently ignored.
func (s *Store) AppendDeadLetter(ctx context.Context, fingerprint string, env model.Envelope, attempts int, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dead_letters (fingerprint, action, data, attempts, reason, failed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, fingerprint, string(env.Action), []byte(env.Data), attempts, reason, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("append dead letter: %w", err)
	}
	return nil
}

// DeadLetters returns all abandoned envelopes, oldest first.
func (s *Store) DeadLetters(ctx context.Context) ([]DeadLetter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fingerprint, action, data, attempts, reason, failed_at
		FROM dead_letters
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("dead letters: %w", err)
	}
	defer rows.Close()

	var letters []DeadLetter
	for rows.Next() {
		var (
			dl       DeadLetter
			action   string
			data     []byte
			failedAt int64
		)
		if err := rows.Scan(&dl.ID, &dl.Fingerprint, &action, &data, &dl.Attempts, &dl.Reason, &failedAt); err != nil {
			return nil, fmt.Errorf("dead letters: scan: %w", err)
		}
		dl.Envelope = model.Envelope{Action: model.Action(action), Data: data}
		dl.FailedAt = time.UnixMilli(failedAt)
		letters = append(letters, dl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dead letters: %w", err)
	}
	return letters, nil
}
