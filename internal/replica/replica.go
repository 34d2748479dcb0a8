// Package replica holds the authoritative local copy of students, payments,
// and expenses, persisted as a single snapshot under the store's replica key.
//
// Mutations apply in memory first and persist immediately; network
// confirmation happens later via the outbound queue. Nothing in this package
// is ever rolled back on remote failure.
package replica

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gurukul/gdl/internal/model"
	"github.com/gurukul/gdl/internal/store"
)

// Replica is the in-memory working copy backed by the store.
//
// Not safe for concurrent use; the engine serializes access (single logical
// thread of control, see engine.Engine).
type Replica struct {
	store *store.Store

	students map[string]model.Student
	order    []string // student ids in first-seen order, for stable listings
	payments []model.Payment
	expenses []model.Expense
}

// snapshot is the persisted form of the replica. Slices rather than maps so
// the stored JSON matches the wire shapes and stays diffable.
type snapshot struct {
	Students []model.Student `json:"students"`
	Payments []model.Payment `json:"payments"`
	Expenses []model.Expense `json:"expenses"`
}

// Load restores the replica from the store, or initializes empty collections
// when nothing has been persisted yet.
func Load(ctx context.Context, st *store.Store) (*Replica, error) {
	r := &Replica{
		store:    st,
		students: make(map[string]model.Student),
	}

	value, err := st.Get(ctx, store.KeyReplica)
	if errors.Is(err, store.ErrNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load replica: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(value, &snap); err != nil {
		return nil, fmt.Errorf("load replica: %w", err)
	}
	for _, s := range snap.Students {
		if _, seen := r.students[string(s.ID)]; !seen {
			r.order = append(r.order, string(s.ID))
		}
		r.students[string(s.ID)] = s
	}
	r.payments = snap.Payments
	r.expenses = snap.Expenses
	return r, nil
}

// Persist writes the full snapshot to the store. The store's transactional
// Put keeps partial writes invisible to readers.
func (r *Replica) Persist(ctx context.Context) error {
	snap := snapshot{
		Students: r.Students(),
		Payments: r.payments,
		Expenses: r.expenses,
	}
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist replica: %w", err)
	}
	if err := r.store.Put(ctx, store.KeyReplica, value); err != nil {
		return fmt.Errorf("persist replica: %w", err)
	}
	return nil
}

// Students returns all students in stable first-seen order.
func (r *Replica) Students() []model.Student {
	out := make([]model.Student, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.students[id])
	}
	return out
}

// Student returns a student by id.
func (r *Replica) Student(id string) (model.Student, bool) {
	s, ok := r.students[id]
	return s, ok
}

// Payments returns a copy of the payment log.
func (r *Replica) Payments() []model.Payment {
	out := make([]model.Payment, len(r.payments))
	copy(out, r.payments)
	return out
}

// PaymentsFor returns the payments belonging to one student.
func (r *Replica) PaymentsFor(studentID string) []model.Payment {
	var out []model.Payment
	for _, p := range r.payments {
		if string(p.StudentID) == studentID {
			out = append(out, p)
		}
	}
	return out
}

// Expenses returns a copy of the expense log.
func (r *Replica) Expenses() []model.Expense {
	out := make([]model.Expense, len(r.expenses))
	copy(out, r.expenses)
	return out
}

// UpsertStudent inserts or replaces a student and persists.
func (r *Replica) UpsertStudent(ctx context.Context, s model.Student) error {
	r.upsertStudent(s)
	return r.Persist(ctx)
}

func (r *Replica) upsertStudent(s model.Student) {
	if _, seen := r.students[string(s.ID)]; !seen {
		r.order = append(r.order, string(s.ID))
	}
	r.students[string(s.ID)] = s
}

// AppendPayment appends a payment and persists. Payments are never removed
// once created.
func (r *Replica) AppendPayment(ctx context.Context, p model.Payment) error {
	r.payments = append(r.payments, p)
	return r.Persist(ctx)
}

// AppendExpense appends an expense and persists.
func (r *Replica) AppendExpense(ctx context.Context, e model.Expense) error {
	r.expenses = append(r.expenses, e)
	return r.Persist(ctx)
}

// ConfirmPayment patches the payment with the given client timestamp to a
// confirmed transaction id and persists. Returns false when no pending
// payment matches; the timestamp is the only identity an optimistic payment
// has before the remote responds.
func (r *Replica) ConfirmPayment(ctx context.Context, timestamp int64, txnID string) (bool, error) {
	for i := range r.payments {
		if r.payments[i].Timestamp == timestamp && r.payments[i].Txn.Pending() {
			r.payments[i].Txn = model.ConfirmedTxn(txnID)
			return true, r.Persist(ctx)
		}
	}
	return false, nil
}

// MarkLeft soft-deletes a student (status -> Left) and persists.
// Students are never hard-deleted.
func (r *Replica) MarkLeft(ctx context.Context, id string) (bool, error) {
	s, ok := r.students[id]
	if !ok {
		return false, nil
	}
	s.Status = model.StatusLeft
	r.students[id] = s
	return true, r.Persist(ctx)
}
