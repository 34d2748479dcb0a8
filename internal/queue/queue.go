// Package queue is the durable outbound mutation queue: every locally
// originated mutation waits here, strictly FIFO, until the remote endpoint
// confirms it.
//
// Ordering is load-bearing. The endpoint applies mutations in receipt order
// and has no conflict resolution of its own, so a later mutation must never
// be transmitted before an earlier one. Only the head is ever in flight, and
// no entry is removed until the remote confirms success or the entry is
// parked in the dead-letter table.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gurukul/gdl/internal/model"
	"github.com/gurukul/gdl/internal/store"
)

// DefaultMaxRejections is how many remote rejections the head survives
// before being parked in the dead-letter table. Transport failures do not
// count: offline retries stay unbounded so a long outage never loses a
// mutation.
const DefaultMaxRejections = 5

// Entry is one queued envelope with its retry bookkeeping.
type Entry struct {
	Envelope    model.Envelope `json:"envelope"`
	Fingerprint string         `json:"fingerprint"`
	Attempts    int            `json:"attempts"`
}

// Queue is the persisted FIFO of unconfirmed mutations.
//
// Not safe for concurrent use; the engine serializes access.
type Queue struct {
	store   *store.Store
	entries []Entry
}

// Load restores the queue from the store, or starts empty.
func Load(ctx context.Context, st *store.Store) (*Queue, error) {
	q := &Queue{store: st}

	value, err := st.Get(ctx, store.KeyQueue)
	if errors.Is(err, store.ErrNotFound) {
		return q, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	if err := json.Unmarshal(value, &q.entries); err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	return q, nil
}

func (q *Queue) persist(ctx context.Context) error {
	entries := q.entries
	if entries == nil {
		entries = []Entry{}
	}
	value, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("persist queue: %w", err)
	}
	if err := q.store.Put(ctx, store.KeyQueue, value); err != nil {
		return fmt.Errorf("persist queue: %w", err)
	}
	return nil
}

// Enqueue appends an envelope and persists.
func (q *Queue) Enqueue(ctx context.Context, env model.Envelope) error {
	fp, err := model.Fingerprint(env)
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	q.entries = append(q.entries, Entry{Envelope: env, Fingerprint: fp})
	return q.persist(ctx)
}

// PeekHead returns the first entry without removing it.
func (q *Queue) PeekHead() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

// DequeueHead removes the confirmed head and persists.
func (q *Queue) DequeueHead(ctx context.Context) error {
	if len(q.entries) == 0 {
		return nil
	}
	// Nil out the slot so the backing array releases the payload.
	q.entries[0] = Entry{}
	if len(q.entries) == 1 {
		q.entries = q.entries[:0]
	} else {
		q.entries = q.entries[1:]
	}
	return q.persist(ctx)
}

// RecordRejection notes a remote rejection of the head. When the head
// reaches maxRejections attempts it is parked in the dead-letter table and
// removed so one poisoned envelope cannot wedge the queue forever.
// Returns whether the head was parked.
func (q *Queue) RecordRejection(ctx context.Context, reason string, maxRejections int) (bool, error) {
	if len(q.entries) == 0 {
		return false, nil
	}
	q.entries[0].Attempts++
	if q.entries[0].Attempts < maxRejections {
		return false, q.persist(ctx)
	}

	head := q.entries[0]
	if err := q.store.AppendDeadLetter(ctx, head.Fingerprint, head.Envelope, head.Attempts, reason); err != nil {
		return false, fmt.Errorf("park head: %w", err)
	}
	if err := q.DequeueHead(ctx); err != nil {
		return false, fmt.Errorf("park head: %w", err)
	}
	return true, nil
}

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the queue for inspection.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// PendingStudentIDs returns the ids of students with an unconfirmed
// student-mutating envelope anywhere in the queue. The merge engine uses
// this set to keep stale server data from overwriting in-flight edits.
func (q *Queue) PendingStudentIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, e := range q.entries {
		if id := e.Envelope.StudentID(); id != "" {
			ids[id] = true
		}
	}
	return ids
}
