package replica

import (
	"context"
	"log/slog"

	"github.com/gurukul/gdl/internal/model"
)

// MergeStats reports what a merge actually changed.
type MergeStats struct {
	StudentsApplied    int
	StudentsSuppressed int
	PaymentsAdded      int
	ExpensesAdded      int
}

// Changed reports whether the merge altered the replica at all.
func (m MergeStats) Changed() bool {
	return m.StudentsApplied > 0 || m.PaymentsAdded > 0 || m.ExpensesAdded > 0
}

// Merge folds a remote delta into the replica and persists the result.
// Merge never deletes local entities and is idempotent: folding the same
// delta twice leaves the replica unchanged the second time.
//
// Students: the remote copy replaces the local copy, except for ids listed
// in pending - those have an unconfirmed outbound mutation queued, and the
// local copy wins until the queue confirms. Without the suppression a delta
// pull racing a queued edit would overwrite the edit with stale server data.
//
// Payments: appended only when no local payment carries the same confirmed
// transaction id. An echoed-back payment that is still pending locally (the
// add_payment confirmation has not landed yet) is matched by student and
// client timestamp instead, so it is neither duplicated nor double-counted.
//
// Expenses: appended only when the expense id is unseen.
func (r *Replica) Merge(ctx context.Context, delta model.Delta, pending map[string]bool) (MergeStats, error) {
	var stats MergeStats

	for _, s := range delta.Students {
		if pending[string(s.ID)] {
			stats.StudentsSuppressed++
			slog.Debug("merge: suppressed student overwrite", "id", s.ID)
			continue
		}
		if local, ok := r.students[string(s.ID)]; ok && local == s {
			continue
		}
		r.upsertStudent(s)
		stats.StudentsApplied++
	}

	confirmed := make(map[string]bool, len(r.payments))
	pendingByKey := make(map[paymentKey]bool, 4)
	for _, p := range r.payments {
		if id, ok := p.Txn.ID(); ok {
			confirmed[id] = true
		} else {
			pendingByKey[paymentKey{string(p.StudentID), p.Timestamp}] = true
		}
	}
	for _, p := range delta.Payments {
		if id, ok := p.Txn.ID(); ok && confirmed[id] {
			continue
		}
		if pendingByKey[paymentKey{string(p.StudentID), p.Timestamp}] {
			continue
		}
		r.payments = append(r.payments, p)
		if id, ok := p.Txn.ID(); ok {
			confirmed[id] = true
		}
		stats.PaymentsAdded++
	}

	seenExp := make(map[string]bool, len(r.expenses))
	for _, e := range r.expenses {
		seenExp[e.ExpID] = true
	}
	for _, e := range delta.Expenses {
		if seenExp[e.ExpID] {
			continue
		}
		r.expenses = append(r.expenses, e)
		seenExp[e.ExpID] = true
		stats.ExpensesAdded++
	}

	if !stats.Changed() {
		return stats, nil
	}
	return stats, r.Persist(ctx)
}

type paymentKey struct {
	studentID string
	timestamp int64
}
