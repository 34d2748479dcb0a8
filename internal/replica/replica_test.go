package replica

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurukul/gdl/internal/model"
	"github.com/gurukul/gdl/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func student(id, name string) model.Student {
	return model.Student{
		ID:         model.FlexString(id),
		Name:       name,
		Shift:      model.ShiftMorning,
		MonthlyFee: 500,
		Status:     model.StatusActive,
		JoinDate:   "2024-01-15",
	}
}

func TestLoad_EmptyStore(t *testing.T) {
	st := openTestStore(t)
	r, err := Load(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, r.Students())
	assert.Empty(t, r.Payments())
	assert.Empty(t, r.Expenses())
}

func TestPersist_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	r, err := Load(ctx, st)
	require.NoError(t, err)

	require.NoError(t, r.UpsertStudent(ctx, student("s1", "Ravi")))
	require.NoError(t, r.AppendPayment(ctx, model.Payment{
		StudentID: "s1", StudentName: "Ravi", Amount: 500,
		Timestamp: 1710000000000, Mode: "Cash", Txn: model.PendingTxn(),
	}))
	require.NoError(t, r.AppendExpense(ctx, model.Expense{
		ExpID: "EXP1", Item: "Broom", Amount: 120, Date: "2024-03-01",
	}))

	// A fresh load from the same store sees everything.
	r2, err := Load(ctx, st)
	require.NoError(t, err)
	require.Len(t, r2.Students(), 1)
	assert.Equal(t, "Ravi", r2.Students()[0].Name)
	require.Len(t, r2.Payments(), 1)
	assert.True(t, r2.Payments()[0].Txn.Pending())
	require.Len(t, r2.Expenses(), 1)
	assert.Equal(t, "EXP1", r2.Expenses()[0].ExpID)
}

func TestUpsertStudent_ReplacesAndKeepsOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	r, err := Load(ctx, st)
	require.NoError(t, err)

	require.NoError(t, r.UpsertStudent(ctx, student("s1", "Ravi")))
	require.NoError(t, r.UpsertStudent(ctx, student("s2", "Priya")))

	edited := student("s1", "Ravi Kumar")
	require.NoError(t, r.UpsertStudent(ctx, edited))

	students := r.Students()
	require.Len(t, students, 2)
	assert.Equal(t, "Ravi Kumar", students[0].Name)
	assert.Equal(t, "Priya", students[1].Name)
}

func TestConfirmPayment_PatchesByTimestamp(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	r, err := Load(ctx, st)
	require.NoError(t, err)

	require.NoError(t, r.AppendPayment(ctx, model.Payment{
		StudentID: "s1", Amount: 500, Timestamp: 111, Txn: model.PendingTxn(),
	}))
	require.NoError(t, r.AppendPayment(ctx, model.Payment{
		StudentID: "s1", Amount: 300, Timestamp: 222, Txn: model.PendingTxn(),
	}))

	ok, err := r.ConfirmPayment(ctx, 222, "T9")
	require.NoError(t, err)
	require.True(t, ok)

	payments := r.Payments()
	assert.True(t, payments[0].Txn.Pending())
	id, confirmed := payments[1].Txn.ID()
	require.True(t, confirmed)
	assert.Equal(t, "T9", id)

	// Unknown timestamp patches nothing.
	ok, err = r.ConfirmPayment(ctx, 999, "T10")
	require.NoError(t, err)
	assert.False(t, ok)

	// Already-confirmed payments are not re-patched.
	ok, err = r.ConfirmPayment(ctx, 222, "T11")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkLeft_SoftDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	r, err := Load(ctx, st)
	require.NoError(t, err)

	require.NoError(t, r.UpsertStudent(ctx, student("s1", "Ravi")))

	ok, err := r.MarkLeft(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)

	s, found := r.Student("s1")
	require.True(t, found)
	assert.Equal(t, model.StatusLeft, s.Status)
	assert.False(t, s.Active())

	ok, err = r.MarkLeft(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}
