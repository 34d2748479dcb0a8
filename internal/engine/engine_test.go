package engine_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurukul/gdl/internal/engine"
	"github.com/gurukul/gdl/internal/model"
	"github.com/gurukul/gdl/internal/remote"
	"github.com/gurukul/gdl/internal/store"
)

// fakeRemote is a scripted endpoint. Fields are read by the engine on the
// test goroutine only, unless a test says otherwise.
type fakeRemote struct {
	offline     bool
	rejectWith  string
	transmitted []model.Envelope
	txnSeq      int

	delta       model.Delta
	serverTime  int64
	pullReject  string        // when set, SyncData is refused with this message
	pullBlocked chan struct{} // when set, SyncData waits until closed

	user model.User
}

func (f *fakeRemote) Login(ctx context.Context, username, password string) (model.User, error) {
	if f.offline {
		return model.User{}, fmt.Errorf("login: %w", remote.ErrOffline)
	}
	return f.user, nil
}

func (f *fakeRemote) Transmit(ctx context.Context, env model.Envelope) (remote.Ack, error) {
	if f.offline {
		return remote.Ack{}, fmt.Errorf("%s: %w", env.Action, remote.ErrOffline)
	}
	if f.rejectWith != "" {
		return remote.Ack{}, &remote.RejectionError{Action: env.Action, Message: f.rejectWith}
	}
	f.transmitted = append(f.transmitted, env)
	if env.Action == model.ActionAddPayment {
		f.txnSeq++
		return remote.Ack{TxnID: fmt.Sprintf("T%d", f.txnSeq)}, nil
	}
	return remote.Ack{}, nil
}

func (f *fakeRemote) SyncData(ctx context.Context, lastSync int64) remote.SyncResult {
	if f.pullBlocked != nil {
		<-f.pullBlocked
	}
	if f.offline {
		return remote.SyncResult{Status: remote.SyncOffline}
	}
	if f.pullReject != "" {
		return remote.SyncResult{Status: remote.SyncRejected, Message: f.pullReject}
	}
	return remote.SyncResult{
		Status:     remote.SyncSuccess,
		Updates:    f.delta,
		ServerTime: f.serverTime,
	}
}

func newTestEngine(t *testing.T, rm engine.Remote, opts ...engine.Option) (*engine.Engine, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "gdl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	opts = append([]engine.Option{
		engine.WithClock(func() time.Time {
			return time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
		}),
	}, opts...)
	eng, err := engine.Load(context.Background(), st, rm, opts...)
	require.NoError(t, err)
	return eng, st
}

func TestSync_DrainsQueueInOrderThenPulls(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Amit", Role: "Admin"}, serverTime: 1710000000000}
	eng, st := newTestEngine(t, fake)

	_, err := eng.Login(ctx, "amit", "secret")
	require.NoError(t, err)

	student, err := eng.Admit(ctx, engine.AdmissionInput{Name: "Ravi Kumar", MonthlyFee: 500})
	require.NoError(t, err)
	payment, err := eng.Pay(ctx, string(student.ID), 500, "")
	require.NoError(t, err)
	assert.True(t, payment.Txn.Pending())
	_, err = eng.AddExpense(ctx, "Chalk", 40, "", "")
	require.NoError(t, err)
	require.Equal(t, 3, eng.Queue().Len())

	require.NoError(t, eng.Sync(ctx))

	require.Len(t, fake.transmitted, 3)
	assert.Equal(t, model.ActionNewAdmission, fake.transmitted[0].Action)
	assert.Equal(t, model.ActionAddPayment, fake.transmitted[1].Action)
	assert.Equal(t, model.ActionAddExpense, fake.transmitted[2].Action)
	assert.Equal(t, 0, eng.Queue().Len())
	assert.Equal(t, engine.StatusIdle, eng.Status())

	// The remote txn id was patched back onto the optimistic payment.
	payments := eng.Replica().PaymentsFor(string(student.ID))
	require.Len(t, payments, 1)
	id, confirmed := payments[0].Txn.ID()
	require.True(t, confirmed)
	assert.Equal(t, "T1", id)

	checkpoint, err := st.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Zero(t, checkpoint) // empty delta: checkpoint does not advance
}

func TestSync_OfflineKeepsQueueAndReplicaIntact(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Amit", Role: "Admin"}}
	eng, _ := newTestEngine(t, fake)

	_, err := eng.Login(ctx, "amit", "secret")
	require.NoError(t, err)

	student, err := eng.Admit(ctx, engine.AdmissionInput{Name: "Ravi Kumar", MonthlyFee: 500})
	require.NoError(t, err)
	_, err = eng.Pay(ctx, string(student.ID), 500, "")
	require.NoError(t, err)

	fake.offline = true
	require.NoError(t, eng.Sync(ctx))

	assert.Equal(t, engine.StatusOffline, eng.Status())
	assert.Equal(t, 2, eng.Queue().Len())
	assert.Empty(t, fake.transmitted)
	// Optimistic state survives the failure untouched.
	_, ok := eng.Replica().Student(string(student.ID))
	assert.True(t, ok)
	require.Len(t, eng.Replica().PaymentsFor(string(student.ID)), 1)
	assert.True(t, eng.Replica().PaymentsFor(string(student.ID))[0].Txn.Pending())

	// Connectivity returns: the same cycle drains in original order.
	fake.offline = false
	require.NoError(t, eng.Sync(ctx))

	require.Len(t, fake.transmitted, 2)
	assert.Equal(t, model.ActionNewAdmission, fake.transmitted[0].Action)
	assert.Equal(t, model.ActionAddPayment, fake.transmitted[1].Action)
	assert.Equal(t, 0, eng.Queue().Len())
	assert.Equal(t, engine.StatusIdle, eng.Status())
}

func TestSync_RejectionParksHeadAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Amit", Role: "Admin"}, rejectWith: "Duplicate entry"}
	eng, st := newTestEngine(t, fake, engine.WithMaxRejections(2))

	_, err := eng.Login(ctx, "amit", "secret")
	require.NoError(t, err)
	_, err = eng.AddExpense(ctx, "Chalk", 40, "", "")
	require.NoError(t, err)

	// First rejection: head retained, cycle still completes.
	require.NoError(t, eng.Sync(ctx))
	require.Equal(t, 1, eng.Queue().Len())
	assert.Equal(t, 1, eng.Queue().Entries()[0].Attempts)
	assert.Equal(t, engine.StatusIdle, eng.Status())

	// Second rejection reaches the limit: parked, queue unwedged.
	require.NoError(t, eng.Sync(ctx))
	assert.Equal(t, 0, eng.Queue().Len())

	letters, err := st.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, model.ActionAddExpense, letters[0].Envelope.Action)
	assert.Equal(t, 2, letters[0].Attempts)
	assert.Contains(t, letters[0].Reason, "Duplicate entry")
}

func TestSync_RejectedPullSurfacesRejectedStatus(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{pullReject: "quota exceeded"}
	eng, st := newTestEngine(t, fake)

	require.NoError(t, eng.Sync(ctx))

	assert.Equal(t, engine.StatusRejected, eng.Status())
	assert.Equal(t, "rejected", eng.Status().String())

	checkpoint, err := st.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Zero(t, checkpoint)

	// The refusal clears once the endpoint serves a pull again.
	fake.pullReject = ""
	require.NoError(t, eng.Sync(ctx))
	assert.Equal(t, engine.StatusIdle, eng.Status())
}

func TestSync_MergesDeltaAdvancesCheckpointAndNotifies(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{
		serverTime: 1710000000000,
		delta: model.Delta{
			Students: []model.Student{{ID: "s1", Name: "Ravi Kumar", Status: model.StatusActive}},
		},
	}
	notified := false
	eng, st := newTestEngine(t, fake, engine.WithNotifier(func() { notified = true }))

	require.NoError(t, eng.Sync(ctx))

	s, ok := eng.Replica().Student("s1")
	require.True(t, ok)
	assert.Equal(t, "Ravi Kumar", s.Name)
	assert.True(t, notified)

	checkpoint, err := st.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1710000000000), checkpoint)
	assert.Equal(t, engine.StatusIdle, eng.Status())
}

func TestSync_StampsCollectedByAtTransmitTime(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Priya", Role: "Admin"}}
	eng, _ := newTestEngine(t, fake)

	_, err := eng.Login(ctx, "priya", "secret")
	require.NoError(t, err)

	// A payment queued without a collector (older clients did not set one).
	env, err := model.NewEnvelope(model.ActionAddPayment, map[string]any{
		"studentId": "s1",
		"amount":    500,
		"timestamp": 1700000000000,
	})
	require.NoError(t, err)
	require.NoError(t, eng.Queue().Enqueue(ctx, env))

	require.NoError(t, eng.Sync(ctx))

	require.Len(t, fake.transmitted, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(fake.transmitted[0].Data, &payload))
	assert.Equal(t, "Priya", payload["collectedBy"])
}

func TestSync_RejectsOverlappingCycles(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	fake := &fakeRemote{pullBlocked: gate}
	eng, _ := newTestEngine(t, fake)

	done := make(chan error, 1)
	go func() { done <- eng.Sync(ctx) }()

	// Wait for the first cycle to reach the blocked delta pull.
	require.Eventually(t, func() bool {
		return eng.Status() == engine.StatusSyncing
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, eng.Sync(ctx), engine.ErrSyncInProgress)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, engine.StatusIdle, eng.Status())
}

func TestPay_Validation(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Amit", Role: "Admin"}}
	eng, _ := newTestEngine(t, fake)

	_, err := eng.Pay(ctx, "s1", 0, "")
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))

	_, err = eng.Pay(ctx, "missing", 500, "")
	assert.ErrorIs(t, err, engine.ErrNoSuchStudent)
}

func TestPay_RequiresSession(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{}
	eng, _ := newTestEngine(t, fake)

	student, err := eng.Admit(ctx, engine.AdmissionInput{Name: "Ravi Kumar", MonthlyFee: 500})
	require.NoError(t, err)

	_, err = eng.Pay(ctx, string(student.ID), 500, "")
	assert.ErrorIs(t, err, engine.ErrNotLoggedIn)
}

func TestRemoveStudent_StaffForbidden(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Sunil", Role: model.RoleStaff}}
	eng, _ := newTestEngine(t, fake)

	_, err := eng.Login(ctx, "sunil", "secret")
	require.NoError(t, err)

	student, err := eng.Admit(ctx, engine.AdmissionInput{Name: "Ravi Kumar", MonthlyFee: 500})
	require.NoError(t, err)

	err = eng.RemoveStudent(ctx, string(student.ID))
	assert.ErrorIs(t, err, engine.ErrForbidden)

	// Still active: forbidden removals change nothing.
	s, ok := eng.Replica().Student(string(student.ID))
	require.True(t, ok)
	assert.True(t, s.Active())
}

func TestRemoveStudent_SoftDeletesAndQueues(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Amit", Role: "Admin"}}
	eng, _ := newTestEngine(t, fake)

	_, err := eng.Login(ctx, "amit", "secret")
	require.NoError(t, err)

	student, err := eng.Admit(ctx, engine.AdmissionInput{Name: "Ravi Kumar", MonthlyFee: 500})
	require.NoError(t, err)
	require.NoError(t, eng.RemoveStudent(ctx, string(student.ID)))

	s, ok := eng.Replica().Student(string(student.ID))
	require.True(t, ok)
	assert.Equal(t, model.StatusLeft, s.Status)

	entries := eng.Queue().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionDeleteStudent, entries[1].Envelope.Action)
}

func TestEditStudent_UnknownID(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, &fakeRemote{})

	err := eng.EditStudent(ctx, model.Student{ID: "ghost", Name: "Nobody"})
	assert.ErrorIs(t, err, engine.ErrNoSuchStudent)
}

func TestMerge_DoesNotClobberPendingEdit(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{user: model.User{Name: "Amit", Role: "Admin"}}
	eng, _ := newTestEngine(t, fake)

	_, err := eng.Login(ctx, "amit", "secret")
	require.NoError(t, err)

	student, err := eng.Admit(ctx, engine.AdmissionInput{Name: "Ravi Kumar", MonthlyFee: 500})
	require.NoError(t, err)

	// Go offline so the admission stays queued, then receive a stale copy of
	// the same student from the server.
	fake.offline = true
	fake.delta = model.Delta{
		Students: []model.Student{{ID: student.ID, Name: "Stale Name", Status: model.StatusActive}},
	}
	require.NoError(t, eng.Sync(ctx))
	assert.Equal(t, engine.StatusOffline, eng.Status())

	// Reachable pull with the queue still holding the admission: the local
	// edit wins until it has been transmitted.
	fake.rejectWith = "try later"
	fake.offline = false
	require.NoError(t, eng.Sync(ctx))

	s, ok := eng.Replica().Student(string(student.ID))
	require.True(t, ok)
	assert.Equal(t, "Ravi Kumar", s.Name)
}
