// Package engine is the sync orchestrator. It owns the application state
// (replica, outbound queue, checkpoint, session) and drives the
// drain-queue-then-pull-delta cycle against the remote endpoint.
//
// Concurrency model: one logical thread of control. A sync cycle runs
// strictly sequentially from first transmit to final merge; an in-progress
// guard rejects overlapping cycles, because two concurrent cycles could
// both read the same queue head and double-transmit it, or merge against a
// stale checkpoint. User intents (admission, payment, expense, edit,
// removal) apply to memory and storage synchronously and never wait on the
// network.
//
// Failure semantics: remote failures are never fatal. Transport failures
// park the engine in the Offline state with the queue intact (at-least-once
// delivery); remote rejections are retried a bounded number of times before
// the envelope moves to the dead-letter table. Local mutations are never
// rolled back.
package engine
