package memstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/vaani/internal/core"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration, window, maxSessions int) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(ttl, window, maxSessions, WithClock(clock.now)), clock
}

func turn(id, text string, intent core.Intent, entities core.Entities) core.Turn {
	return core.Turn{ID: id, Text: text, Intent: intent, Entities: entities}
}

func TestStore_GetUnknownSession(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10, 100)
	conv, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if conv != nil {
		t.Fatalf("expected nil context, got %+v", conv)
	}
}

func TestStore_AppendAndGet(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10, 100)
	ctx := context.Background()

	if err := s.Append(ctx, "s1", turn("t1", "weather in mumbai", core.IntentWeather, core.Entities{"city": "Mumbai"})); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "s1", turn("t2", "thanks", core.IntentChat, nil)); err != nil {
		t.Fatalf("append: %v", err)
	}

	conv, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(conv.Turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(conv.Turns))
	}
	if conv.LastIntent != core.IntentChat {
		t.Errorf("last intent = %s, want chat", conv.LastIntent)
	}
	// A trivial turn must not displace the active topic.
	if conv.ActiveTopic != core.IntentWeather {
		t.Errorf("active topic = %s, want weather", conv.ActiveTopic)
	}
	if conv.ActiveEntities["city"] != "Mumbai" {
		t.Errorf("active entities = %v", conv.ActiveEntities)
	}
}

func TestStore_AppendIsIdempotent(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10, 100)
	ctx := context.Background()

	tr := turn("same-id", "hello", core.IntentChat, nil)
	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, "s1", tr); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	conv, _ := s.Get(ctx, "s1")
	if len(conv.Turns) != 1 {
		t.Fatalf("turns = %d, want 1 after duplicate appends", len(conv.Turns))
	}
}

func TestStore_WindowPrune(t *testing.T) {
	s, _ := newTestStore(time.Minute, 3, 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("t%d", i)
		if err := s.Append(ctx, "s1", turn(id, id, core.IntentChat, nil)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	conv, _ := s.Get(ctx, "s1")
	if len(conv.Turns) != 3 {
		t.Fatalf("turns = %d, want window of 3", len(conv.Turns))
	}
	if conv.Turns[0].ID != "t2" || conv.Turns[2].ID != "t4" {
		t.Errorf("window kept wrong turns: %v", conv.Turns)
	}

	// A pruned turn id is reusable again: its idempotency record went with it.
	if err := s.Append(ctx, "s1", turn("t0", "re-delivered", core.IntentChat, nil)); err != nil {
		t.Fatalf("append: %v", err)
	}
	conv, _ = s.Get(ctx, "s1")
	if conv.Turns[len(conv.Turns)-1].ID != "t0" {
		t.Errorf("pruned id was still deduplicated: %v", conv.Turns)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	s, clock := newTestStore(30*time.Minute, 10, 100)
	ctx := context.Background()

	s.Append(ctx, "s1", turn("t1", "hello", core.IntentChat, core.Entities{"raw_text": "hello"}))

	clock.advance(29 * time.Minute)
	if conv, _ := s.Get(ctx, "s1"); conv == nil {
		t.Fatal("session expired too early")
	}

	clock.advance(2 * time.Minute)
	if conv, _ := s.Get(ctx, "s1"); conv != nil {
		t.Fatal("session survived past its TTL")
	}
}

func TestStore_TouchExtendsTTL(t *testing.T) {
	s, clock := newTestStore(30*time.Minute, 10, 100)
	ctx := context.Background()

	s.Append(ctx, "s1", turn("t1", "one", core.IntentChat, nil))
	clock.advance(20 * time.Minute)
	s.Append(ctx, "s1", turn("t2", "two", core.IntentChat, nil))
	clock.advance(20 * time.Minute)

	conv, _ := s.Get(ctx, "s1")
	if conv == nil {
		t.Fatal("activity must extend the session lifetime")
	}
	if len(conv.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(conv.Turns))
	}
}

func TestStore_CapacityEviction(t *testing.T) {
	s, clock := newTestStore(time.Hour, 10, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.Append(ctx, fmt.Sprintf("s%d", i), turn("t", "x", core.IntentChat, nil))
		clock.advance(time.Minute)
	}
	// s0 is the least recently active; the fourth session evicts it.
	s.Append(ctx, "s3", turn("t", "x", core.IntentChat, nil))

	if conv, _ := s.Get(ctx, "s0"); conv != nil {
		t.Error("oldest session should have been evicted")
	}
	if conv, _ := s.Get(ctx, "s3"); conv == nil {
		t.Error("new session missing")
	}
	if got := s.Len(); got != 3 {
		t.Errorf("len = %d, want 3", got)
	}
}

func TestStore_Pending(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10, 100)
	ctx := context.Background()

	if p, _ := s.PeekPending(ctx, "s1"); p != nil {
		t.Fatalf("unexpected pending: %+v", p)
	}

	marker := core.PendingMarker{
		Kind:     core.PendingLocation,
		Intent:   core.IntentLocalSearch,
		Entities: core.Entities{"search_query": "atm"},
	}
	if err := s.SetPending(ctx, "s1", marker); err != nil {
		t.Fatalf("set pending: %v", err)
	}

	p, err := s.PeekPending(ctx, "s1")
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if p == nil || p.Kind != core.PendingLocation || p.Intent != core.IntentLocalSearch {
		t.Fatalf("pending = %+v", p)
	}

	if err := s.ClearPending(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if p, _ := s.PeekPending(ctx, "s1"); p != nil {
		t.Fatalf("pending survived clear: %+v", p)
	}
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(30*time.Minute, 10, 100)
	ctx := context.Background()

	s.Append(ctx, "old1", turn("t", "x", core.IntentChat, nil))
	s.Append(ctx, "old2", turn("t", "x", core.IntentChat, nil))
	clock.advance(40 * time.Minute)
	s.Append(ctx, "fresh", turn("t", "x", core.IntentChat, nil))

	evicted, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if evicted != 2 {
		t.Errorf("evicted = %d, want 2", evicted)
	}
	if got := s.Len(); got != 1 {
		t.Errorf("len = %d, want 1", got)
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10, 100)
	ctx := context.Background()

	s.Append(ctx, "s1", turn("t1", "x", core.IntentWeather, core.Entities{"city": "Mumbai"}))

	conv, _ := s.Get(ctx, "s1")
	conv.ActiveEntities["city"] = "Paris"
	conv.Turns[0].Text = "mutated"

	again, _ := s.Get(ctx, "s1")
	if again.ActiveEntities["city"] != "Mumbai" {
		t.Errorf("stored entities mutated through snapshot: %v", again.ActiveEntities)
	}
	if again.Turns[0].Text != "x" {
		t.Errorf("stored turns mutated through snapshot: %v", again.Turns)
	}
}
