package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/pkg/log"
)

// Sessions is the durable ContextStore. Failures wrap core.ErrContextStore
// so the orchestrator can degrade to "no context" instead of failing.
type Sessions struct {
	db     *sql.DB
	ttl    time.Duration
	window int
}

func NewSessions(db *sql.DB, ttl time.Duration, window int) *Sessions {
	return &Sessions{db: db, ttl: ttl, window: window}
}

func (s *Sessions) Get(ctx context.Context, sessionID string) (*core.ConversationContext, error) {
	cutoff := time.Now().Add(-s.ttl)

	var lastSeen time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT last_seen FROM sessions WHERE session_id = ?`, sessionID).Scan(&lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query session: %v", core.ErrContextStore, err)
	}
	if lastSeen.Before(cutoff) {
		return nil, nil
	}

	// Fetch the LAST window turns by ordering DESC, then reverse back to
	// chronological order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, text, intent, entities, language, created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		sessionID, s.window)
	if err != nil {
		return nil, fmt.Errorf("%w: query turns: %v", core.ErrContextStore, err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		var entitiesStr sql.NullString
		if err := rows.Scan(&t.ID, &t.Text, &t.Intent, &entitiesStr, &t.Language, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan turn: %v", core.ErrContextStore, err)
		}
		if entitiesStr.Valid && entitiesStr.String != "" {
			if err := json.Unmarshal([]byte(entitiesStr.String), &t.Entities); err != nil {
				log.FromCtx(ctx).Warn().Err(err).Str("turn", t.ID).Msg("dropping unreadable entities")
			}
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrContextStore, err)
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	conv := &core.ConversationContext{
		SessionID: sessionID,
		Turns:     turns,
		UpdatedAt: lastSeen,
	}
	if last := conv.LastTurn(); last != nil {
		conv.LastIntent = last.Intent
	}
	// Active entities derive from the most recent non-trivial turn.
	for i := len(turns) - 1; i >= 0; i-- {
		if len(turns[i].Entities) > 0 {
			conv.ActiveTopic = turns[i].Intent
			conv.ActiveEntities = turns[i].Entities.Clone()
			break
		}
	}
	return conv, nil
}

func (s *Sessions) Append(ctx context.Context, sessionID string, turn core.Turn) error {
	entitiesJSON := ""
	if len(turn.Entities) > 0 {
		data, err := json.Marshal(turn.Entities)
		if err != nil {
			return fmt.Errorf("marshal entities: %w", err)
		}
		entitiesJSON = string(data)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", core.ErrContextStore, err)
	}
	defer tx.Rollback()

	// OR IGNORE keeps the append idempotent by (session_id, turn_id).
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO turns (session_id, turn_id, text, intent, entities, language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, turn.ID, turn.Text, turn.Intent, entitiesJSON, turn.Language, turn.Timestamp); err != nil {
		return fmt.Errorf("%w: insert turn: %v", core.ErrContextStore, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, last_seen) VALUES (?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id) DO UPDATE SET last_seen = CURRENT_TIMESTAMP`,
		sessionID); err != nil {
		return fmt.Errorf("%w: touch session: %v", core.ErrContextStore, err)
	}

	// Prune beyond the window; oldest turns drop first.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id = ? AND rowid NOT IN (
		   SELECT rowid FROM turns WHERE session_id = ?
		   ORDER BY created_at DESC, rowid DESC LIMIT ?)`,
		sessionID, sessionID, s.window); err != nil {
		return fmt.Errorf("%w: prune turns: %v", core.ErrContextStore, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", core.ErrContextStore, err)
	}
	return nil
}

func (s *Sessions) PeekPending(ctx context.Context, sessionID string) (*core.PendingMarker, error) {
	var pending string
	err := s.db.QueryRowContext(ctx,
		`SELECT pending FROM sessions WHERE session_id = ?`, sessionID).Scan(&pending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query pending: %v", core.ErrContextStore, err)
	}
	if pending == "" {
		return nil, nil
	}

	var marker core.PendingMarker
	if err := json.Unmarshal([]byte(pending), &marker); err != nil {
		return nil, fmt.Errorf("%w: decode pending: %v", core.ErrContextStore, err)
	}
	return &marker, nil
}

func (s *Sessions) SetPending(ctx context.Context, sessionID string, marker core.PendingMarker) error {
	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("marshal pending: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, pending, last_seen) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id) DO UPDATE SET pending = excluded.pending, last_seen = CURRENT_TIMESTAMP`,
		sessionID, string(data)); err != nil {
		return fmt.Errorf("%w: set pending: %v", core.ErrContextStore, err)
	}
	return nil
}

func (s *Sessions) ClearPending(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET pending = '' WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("%w: clear pending: %v", core.ErrContextStore, err)
	}
	return nil
}

// Sweep deletes sessions idle past the TTL along with their turns.
func (s *Sessions) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.ttl)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id IN (SELECT session_id FROM sessions WHERE last_seen < ?)`,
		cutoff); err != nil {
		return 0, fmt.Errorf("%w: sweep turns: %v", core.ErrContextStore, err)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: sweep sessions: %v", core.ErrContextStore, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
