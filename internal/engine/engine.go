package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gurukul/gdl/internal/model"
	"github.com/gurukul/gdl/internal/queue"
	"github.com/gurukul/gdl/internal/remote"
	"github.com/gurukul/gdl/internal/replica"
	"github.com/gurukul/gdl/internal/store"
)

// Status is the engine's connectivity state as observed by the UI.
type Status int32

// Engine states. Offline is entered on any transport failure, Rejected when
// a reachable endpoint refuses the delta pull; both are left on the next
// cycle that completes one.
const (
	StatusIdle Status = iota
	StatusSyncing
	StatusOffline
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSyncing:
		return "syncing"
	case StatusOffline:
		return "offline"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Remote is the slice of the endpoint client the engine needs. Satisfied by
// *remote.Client; tests substitute a scripted fake.
type Remote interface {
	Login(ctx context.Context, username, password string) (model.User, error)
	Transmit(ctx context.Context, env model.Envelope) (remote.Ack, error)
	SyncData(ctx context.Context, lastSync int64) remote.SyncResult
}

// Engine owns the replica, the outbound queue, and the sync cycle.
//
// All mutating methods assume a single logical caller; only Status is safe to
// read concurrently (watch mode reads it from the render loop while a cycle
// runs).
type Engine struct {
	store   *store.Store
	replica *replica.Replica
	queue   *queue.Queue
	remote  Remote

	tokens        TokenGenerator
	now           func() time.Time
	notify        func()
	maxRejections int

	status  atomic.Int32
	syncing atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTokenGenerator overrides the id generator (tests).
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNotifier registers a callback fired after a merge changes the replica.
// The CLI uses it to re-render in watch mode.
func WithNotifier(fn func()) Option {
	return func(e *Engine) { e.notify = fn }
}

// WithMaxRejections overrides the dead-letter threshold.
func WithMaxRejections(n int) Option {
	return func(e *Engine) { e.maxRejections = n }
}

// New assembles an engine over already-loaded state.
func New(st *store.Store, rep *replica.Replica, q *queue.Queue, rm Remote, opts ...Option) *Engine {
	e := &Engine{
		store:         st,
		replica:       rep,
		queue:         q,
		remote:        rm,
		tokens:        UUIDv7Generator{},
		now:           time.Now,
		maxRejections: queue.DefaultMaxRejections,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load opens the persisted state under st and assembles an engine.
func Load(ctx context.Context, st *store.Store, rm Remote, opts ...Option) (*Engine, error) {
	rep, err := replica.Load(ctx, st)
	if err != nil {
		return nil, err
	}
	q, err := queue.Load(ctx, st)
	if err != nil {
		return nil, err
	}
	return New(st, rep, q, rm, opts...), nil
}

// Status returns the current engine state.
func (e *Engine) Status() Status { return Status(e.status.Load()) }

func (e *Engine) setStatus(s Status) { e.status.Store(int32(s)) }

// Replica exposes the local working copy for read paths (listings, ledgers).
func (e *Engine) Replica() *replica.Replica { return e.replica }

// Queue exposes the outbound queue for inspection.
func (e *Engine) Queue() *queue.Queue { return e.queue }

// Session returns the logged-in user. Returns ErrNotLoggedIn when no session
// is stored on this device.
func (e *Engine) Session(ctx context.Context) (model.User, error) {
	user, err := e.store.Session(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, ErrNotLoggedIn
	}
	return user, err
}

// Sync runs one full cycle: drain the outbound queue head-by-head, then pull
// remote deltas since the stored checkpoint and merge them.
//
// Remote failures are not errors from the caller's point of view: a transport
// failure parks the engine in StatusOffline with the queue intact, a
// rejection is counted against the head. A non-nil return means local
// storage failed, which is fatal to the cycle.
func (e *Engine) Sync(ctx context.Context) error {
	if !e.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer e.syncing.Store(false)

	e.setStatus(StatusSyncing)

	if err := e.drain(ctx); err != nil {
		if errors.Is(err, remote.ErrOffline) {
			e.setStatus(StatusOffline)
			return nil
		}
		e.setStatus(StatusIdle)
		return err
	}

	return e.pull(ctx)
}

// drain transmits queued envelopes in order until the queue is empty, the
// endpoint goes unreachable, or the head is rejected but not yet parked.
// Only the head is ever in flight.
func (e *Engine) drain(ctx context.Context) error {
	for {
		head, ok := e.queue.PeekHead()
		if !ok {
			return nil
		}

		env := head.Envelope
		if env.Action == model.ActionAddPayment {
			// The acting user may differ from whoever recorded the
			// payment, so the stamp happens now, not at enqueue.
			if user, err := e.Session(ctx); err == nil {
				stamped, serr := env.StampCollectedBy(user.Name)
				if serr != nil {
					return serr
				}
				env = stamped
			}
		}

		ack, err := e.remote.Transmit(ctx, env)
		if errors.Is(err, remote.ErrOffline) {
			slog.Info("transmit offline, queue retained",
				"action", env.Action, "queued", e.queue.Len())
			return err
		}
		if err != nil {
			parked, perr := e.queue.RecordRejection(ctx, err.Error(), e.maxRejections)
			if perr != nil {
				return perr
			}
			if parked {
				slog.Warn("envelope dead-lettered",
					"action", env.Action, "attempts", e.maxRejections, "reason", err.Error())
				continue
			}
			slog.Warn("transmit rejected, head retained",
				"action", env.Action, "attempts", head.Attempts+1, "reason", err.Error())
			// The endpoint is reachable, so the delta pull still runs;
			// the head is retried next cycle.
			return nil
		}

		if env.Action == model.ActionAddPayment && ack.TxnID != "" {
			ts := env.PaymentTimestamp()
			if ts != 0 {
				if _, err := e.replica.ConfirmPayment(ctx, ts, ack.TxnID); err != nil {
					return err
				}
			}
		}

		if err := e.queue.DequeueHead(ctx); err != nil {
			return err
		}
		slog.Debug("transmit confirmed", "action", env.Action, "remaining", e.queue.Len())
	}
}

// pull fetches remote deltas since the checkpoint, merges them, and advances
// the checkpoint to the server's time.
func (e *Engine) pull(ctx context.Context) error {
	checkpoint, err := e.store.Checkpoint(ctx)
	if err != nil {
		e.setStatus(StatusIdle)
		return err
	}

	res := e.remote.SyncData(ctx, checkpoint)
	switch res.Status {
	case remote.SyncOffline:
		slog.Info("delta pull offline", "checkpoint", checkpoint)
		e.setStatus(StatusOffline)
		return nil
	case remote.SyncRejected:
		// The endpoint is reachable but refusing pulls; idle would hide
		// that from the status surface.
		slog.Warn("delta pull rejected", "message", res.Message)
		e.setStatus(StatusRejected)
		return nil
	}

	if !res.Updates.Empty() {
		stats, err := e.replica.Merge(ctx, res.Updates, e.queue.PendingStudentIDs())
		if err != nil {
			e.setStatus(StatusIdle)
			return err
		}
		if err := e.store.SetCheckpoint(ctx, res.ServerTime); err != nil {
			e.setStatus(StatusIdle)
			return err
		}
		slog.Info("merged remote delta",
			"students", stats.StudentsApplied,
			"suppressed", stats.StudentsSuppressed,
			"payments", stats.PaymentsAdded,
			"expenses", stats.ExpensesAdded,
			"checkpoint", res.ServerTime)
		if stats.Changed() && e.notify != nil {
			e.notify()
		}
	}

	e.setStatus(StatusIdle)
	return nil
}

// Watch runs Sync on a fixed interval until ctx is cancelled. An immediate
// cycle runs before the first tick. Overlapping cycles are skipped rather
// than queued.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := e.Sync(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
			slog.Error("sync cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
