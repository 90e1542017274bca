package core

import "context"

// ContextStore is the per-session conversation history collaborator. The
// core reads snapshots and proposes appends; eviction is the store's job
// (TTL on inactivity). A store error is degraded to "no context" by the
// orchestrator, never fatal.
type ContextStore interface {
	// Get returns the session's context snapshot, or nil when the session
	// is unknown or expired.
	Get(ctx context.Context, sessionID string) (*ConversationContext, error)

	// Append records a completed turn. Append is idempotent by Turn.ID:
	// re-delivery of the same turn must not duplicate it.
	Append(ctx context.Context, sessionID string, turn Turn) error

	// PeekPending returns the clarifying-question marker left by the
	// previous turn, or nil. Peek does not clear.
	PeekPending(ctx context.Context, sessionID string) (*PendingMarker, error)

	// SetPending records a clarifying-question marker for the session.
	SetPending(ctx context.Context, sessionID string, marker PendingMarker) error

	// ClearPending removes the session's pending marker, if any.
	ClearPending(ctx context.Context, sessionID string) error
}
