package core

import "time"

const (
	VaaniName      = "VaaniBot"
	VaaniUserAgent = "VaaniBot/0.1"
	VaaniVersion   = "0.1.0"
)

// MessageType discriminates the transport payload of an inbound message.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageLocation MessageType = "location"
	MessageImage    MessageType = "image"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IncomingMessage is the immutable input to one classification call.
type IncomingMessage struct {
	Text        string       `json:"text"`
	Type        MessageType  `json:"message_type"`
	SessionID   string       `json:"session_id"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Entities maps entity names to extracted slot values
// (string, bool or float64 — nothing else crosses the boundary).
type Entities map[string]any

// Clone returns a shallow copy safe to merge into.
func (e Entities) Clone() Entities {
	if e == nil {
		return Entities{}
	}
	out := make(Entities, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge overlays delta on top of e; delta keys win over stale keys.
func (e Entities) Merge(delta Entities) Entities {
	out := e.Clone()
	for k, v := range delta {
		out[k] = v
	}
	return out
}

// Source names which stage of the pipeline produced a result.
type Source string

const (
	SourcePattern  Source = "pattern"
	SourceContext  Source = "context"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// ClassificationResult is the single, final decision for one inbound message.
// Exactly one is produced per message; Error carries recovered failures for
// observability and never implies a missing intent.
type ClassificationResult struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
	Source     Source   `json:"source"`
	QueryText  string   `json:"current_query"`
	Language   string   `json:"detected_language"`
	Error      string   `json:"error,omitempty"`
}

// Turn is one completed classification+response pair. ID is the idempotency
// key: appending the same turn twice leaves the context with one copy.
type Turn struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Intent    Intent    `json:"intent"`
	Entities  Entities  `json:"entities"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext is the bounded per-session history snapshot the core
// reads from the ContextStore. ActiveEntities always derive from the most
// recent non-trivial turn, never fabricated.
type ConversationContext struct {
	SessionID      string    `json:"session_id"`
	Turns          []Turn    `json:"turns"`
	ActiveTopic    Intent    `json:"active_topic"`
	ActiveEntities Entities  `json:"active_entities"`
	LastIntent     Intent    `json:"last_intent"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LastTurn returns the most recent turn, or nil for an empty context.
func (c *ConversationContext) LastTurn() *Turn {
	if c == nil || len(c.Turns) == 0 {
		return nil
	}
	return &c.Turns[len(c.Turns)-1]
}

// PendingKind marks what answer the previous turn is waiting for.
type PendingKind string

const (
	PendingLocation PendingKind = "location"
	PendingReminder PendingKind = "reminder"
)

// PendingMarker records a clarifying question asked on the previous turn,
// so the next message can be short-circuited as its answer.
type PendingMarker struct {
	Kind     PendingKind `json:"kind"`
	Intent   Intent      `json:"intent"`
	Entities Entities    `json:"entities"`
	AskedAt  time.Time   `json:"asked_at"`
}

// Relation classifies how the current message relates to prior session state.
type Relation string

const (
	RelationContinuation  Relation = "CONTINUATION"
	RelationModification  Relation = "MODIFICATION"
	RelationClarification Relation = "CLARIFICATION"
	RelationNewTopic      Relation = "NEW_TOPIC"
)

// specificity orders relations for tie-breaking: more specific relations
// encode more information extracted from the current message.
var specificity = map[Relation]int{
	RelationModification:  3,
	RelationClarification: 3,
	RelationContinuation:  2,
	RelationNewTopic:      1,
}

// MoreSpecificThan reports whether r wins a confidence tie against other.
func (r Relation) MoreSpecificThan(other Relation) bool {
	return specificity[r] > specificity[other]
}

// ContextDecision is the context classifier's verdict for one message.
// EntitiesToReuse is always a subset of the context's active entities plus
// deltas parsed from the current message.
type ContextDecision struct {
	UseContext      bool     `json:"use_context"`
	Relation        Relation `json:"relation"`
	EntitiesToReuse Entities `json:"entities_to_reuse"`
	Confidence      float64  `json:"confidence"`
	Reason          string   `json:"reason"`
}
