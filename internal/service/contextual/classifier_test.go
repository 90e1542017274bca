package contextual

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/internal/service/intent"
)

type fakeRelationClassifier struct {
	decision *core.ContextDecision
	err      error
	called   bool
}

func (f *fakeRelationClassifier) ClassifyRelation(_ context.Context, _ string, _ []core.Turn) (*core.ContextDecision, error) {
	f.called = true
	return f.decision, f.err
}

func newTestClassifier(t *testing.T, remote core.RelationClassifier) *Classifier {
	t.Helper()
	m, err := intent.NewMatcher()
	if err != nil {
		t.Fatalf("load matcher: %v", err)
	}
	return NewClassifier(m, remote)
}

func convWith(lastIntent core.Intent, active core.Entities) *core.ConversationContext {
	return &core.ConversationContext{
		SessionID: "s1",
		Turns: []core.Turn{
			{ID: "t1", Text: "earlier message", Intent: lastIntent, Entities: active, Timestamp: time.Now()},
		},
		ActiveTopic:    lastIntent,
		ActiveEntities: active,
		LastIntent:     lastIntent,
		UpdatedAt:      time.Now(),
	}
}

func TestDecide_NoContext(t *testing.T) {
	c := newTestClassifier(t, nil)

	for _, conv := range []*core.ConversationContext{nil, {SessionID: "s1"}} {
		d := c.Decide(context.Background(), "aur batao", conv, "hi")
		if d.Relation != core.RelationNewTopic || d.UseContext {
			t.Errorf("empty context: got %+v, want NEW_TOPIC without context", d)
		}
		if d.Confidence != 1.0 {
			t.Errorf("confidence = %v, want 1.0", d.Confidence)
		}
	}
}

func TestDecide_FullySpecifiedBeatsContext(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentWeather, core.Entities{"city": "Mumbai"})

	tests := []struct {
		msg  string
		lang string
	}{
		{"train from patna to delhi", "en"},
		{"patna se delhi jana hai", "hi"},
		{"weather in Jaipur", "en"}, // confident cascade match with entities
	}
	for _, tt := range tests {
		d := c.Decide(context.Background(), tt.msg, conv, tt.lang)
		if d.Relation != core.RelationNewTopic || d.UseContext {
			t.Errorf("%q: got %+v, want NEW_TOPIC", tt.msg, d)
		}
	}
}

func TestDecide_DiscourseMarkers(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentWeather, core.Entities{"city": "Mumbai"})

	d := c.Decide(context.Background(), "waise, ek baat batao", conv, "hi")
	if d.Relation != core.RelationNewTopic || d.UseContext {
		t.Errorf("new-topic marker: got %+v", d)
	}

	d = c.Decide(context.Background(), "aur batao", conv, "hi")
	if d.Relation != core.RelationContinuation || !d.UseContext {
		t.Fatalf("continuation marker: got %+v", d)
	}
	if d.EntitiesToReuse["city"] != "Mumbai" {
		t.Errorf("reused entities = %v, want city carried over", d.EntitiesToReuse)
	}
}

func TestDecide_TravelModeModification(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentTrainJourney, core.Entities{
		"source_city":      "Patna",
		"destination_city": "Delhi",
	})

	d := c.Decide(context.Background(), "car se batao", conv, "hi")
	if d.Relation != core.RelationModification || !d.UseContext {
		t.Fatalf("got %+v, want MODIFICATION", d)
	}
	if d.EntitiesToReuse["travel_mode"] != "car" {
		t.Errorf("travel_mode = %v", d.EntitiesToReuse["travel_mode"])
	}
	if rt, _ := d.EntitiesToReuse["road_trip"].(bool); !rt {
		t.Errorf("road_trip not set: %v", d.EntitiesToReuse)
	}
	if d.EntitiesToReuse["source_city"] != "Patna" || d.EntitiesToReuse["destination_city"] != "Delhi" {
		t.Errorf("route not carried over: %v", d.EntitiesToReuse)
	}
}

func TestDecide_LocationModification(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentWeather, core.Entities{"city": "Mumbai"})

	d := c.Decide(context.Background(), "aur pune ka", conv, "hi")
	if d.Relation != core.RelationModification || !d.UseContext {
		t.Fatalf("got %+v, want MODIFICATION", d)
	}
	if d.EntitiesToReuse["city"] != "Pune" {
		t.Errorf("city = %v, want Pune (delta wins)", d.EntitiesToReuse["city"])
	}
}

func TestDecide_SameLocationIsNotModification(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentWeather, core.Entities{"city": "Mumbai"})

	d := c.Decide(context.Background(), "mumbai ka kya", conv, "hi")
	if d.Relation == core.RelationModification {
		t.Errorf("repeating the active city must not read as a change: %+v", d)
	}
}

func TestDecide_DateModification(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentGetHoroscope, core.Entities{"sign": "leo", "date": "today"})

	d := c.Decide(context.Background(), "kal ka bhi", conv, "hi")
	if d.Relation != core.RelationModification || !d.UseContext {
		t.Fatalf("got %+v, want MODIFICATION", d)
	}
	if d.EntitiesToReuse["date"] != "tomorrow" {
		t.Errorf("date = %v, want tomorrow", d.EntitiesToReuse["date"])
	}
	if d.EntitiesToReuse["sign"] != "leo" {
		t.Errorf("sign not carried over: %v", d.EntitiesToReuse)
	}
}

func TestDecide_ClarificationAnswer(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentClarify, core.Entities{
		"candidates": "train_status,pnr_status,flight_status",
	})

	d := c.Decide(context.Background(), "flight wala", conv, "hi")
	if d.Relation != core.RelationClarification || !d.UseContext {
		t.Fatalf("got %+v, want CLARIFICATION", d)
	}
	if d.EntitiesToReuse["pending_intent"] != "flight_status" {
		t.Errorf("pending_intent = %v", d.EntitiesToReuse["pending_intent"])
	}
	if _, ok := d.EntitiesToReuse["candidates"]; ok {
		t.Errorf("candidates must not survive resolution: %v", d.EntitiesToReuse)
	}

	// An answer matching two candidates stays unresolved.
	d = c.Decide(context.Background(), "train ticket wala", conv, "hi")
	if d.Relation == core.RelationClarification {
		t.Errorf("ambiguous answer must not resolve: %+v", d)
	}
}

func TestDecide_ShortFollowUps(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentNews, core.Entities{"topic": "elections"})

	d := c.Decide(context.Background(), "kab se", conv, "hi")
	if d.Relation != core.RelationContinuation || !d.UseContext {
		t.Errorf("two-token follow-up: got %+v", d)
	}

	d = c.Decide(context.Background(), "uska detail chahiye mujhe", conv, "hi")
	if d.Relation != core.RelationContinuation || !d.UseContext {
		t.Errorf("referential pronoun: got %+v", d)
	}
	if d.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", d.Confidence)
	}
}

func TestDecide_AckIsNotContinuation(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentNews, core.Entities{"topic": "elections"})

	d := c.Decide(context.Background(), "thik hai", conv, "hi")
	if d.Relation == core.RelationContinuation && d.Confidence > 0.6 {
		t.Errorf("bare ack read as strong continuation: %+v", d)
	}

	d = c.Decide(context.Background(), "ok", conv, "hi")
	if d.UseContext {
		t.Errorf("ack must not reuse context: %+v", d)
	}
}

func TestDecide_RemoteEscalation(t *testing.T) {
	remote := &fakeRelationClassifier{
		decision: &core.ContextDecision{
			UseContext:      true,
			Relation:        core.RelationContinuation,
			EntitiesToReuse: core.Entities{"topic": "elections"},
			Confidence:      0.75,
		},
	}
	c := newTestClassifier(t, remote)
	conv := convWith(core.IntentNews, core.Entities{"topic": "elections"})

	d := c.Decide(context.Background(), "is there any update on what we discussed", conv, "en")
	if !remote.called {
		t.Fatal("remote was not consulted")
	}
	if d.Relation != core.RelationContinuation || d.Confidence != 0.75 {
		t.Errorf("got %+v", d)
	}
}

func TestDecide_RemoteFailureDegrades(t *testing.T) {
	remote := &fakeRelationClassifier{err: errors.New("boom")}
	c := newTestClassifier(t, remote)
	conv := convWith(core.IntentNews, core.Entities{"topic": "elections"})

	d := c.Decide(context.Background(), "is there any update on what we discussed", conv, "en")
	if !remote.called {
		t.Fatal("remote was not consulted")
	}
	if d.Relation != core.RelationNewTopic || d.Confidence != 0.5 {
		t.Errorf("long undecided message after failure: got %+v, want NEW_TOPIC@0.5", d)
	}
}

func TestDecide_NilRemoteFallsBack(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := convWith(core.IntentNews, core.Entities{"topic": "elections"})

	d := c.Decide(context.Background(), "kuch naya bata do", conv, "hi")
	if d.Relation != core.RelationContinuation || d.Confidence != 0.6 {
		t.Errorf("short message with active entities: got %+v, want CONTINUATION@0.6", d)
	}
}

func TestSanitize_EntityContainment(t *testing.T) {
	c := newTestClassifier(t, nil)
	active := core.Entities{"city": "Mumbai", "date": "today"}

	d := c.sanitize(core.ContextDecision{
		UseContext: true,
		Relation:   core.RelationModification,
		EntitiesToReuse: core.Entities{
			"city":       "Paris", // remote-claimed value must be ignored
			"fabricated": "x",     // key outside active+delta must be dropped
		},
		Confidence: 1.7,
	}, active, "weather in pune", "en")

	if d.EntitiesToReuse["city"] != "Pune" {
		t.Errorf("city = %v, want locally parsed Pune", d.EntitiesToReuse["city"])
	}
	if _, ok := d.EntitiesToReuse["fabricated"]; ok {
		t.Errorf("fabricated key survived: %v", d.EntitiesToReuse)
	}
	if d.Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamped to 1.0", d.Confidence)
	}
}

func TestSanitize_UnknownRelation(t *testing.T) {
	c := newTestClassifier(t, nil)

	d := c.sanitize(core.ContextDecision{
		UseContext: true,
		Relation:   core.Relation("SOMETHING_ELSE"),
		Confidence: 0.9,
	}, core.Entities{}, "hello", "en")

	if d.Relation != core.RelationNewTopic || d.UseContext {
		t.Errorf("out-of-enum relation must coerce to NEW_TOPIC: %+v", d)
	}
}

func TestMatchTravelMode(t *testing.T) {
	tests := []struct {
		msg   string
		want  string
		found bool
	}{
		{"car se batao", "car", true},
		{"gaadi se jayenge", "car", true},
		{"by road", "car", true},
		{"flight se", "flight", true},
		{"carpet shopping", "", false},
	}
	for _, tt := range tests {
		got, ok := matchTravelMode(normalize(tt.msg))
		if ok != tt.found || got != tt.want {
			t.Errorf("matchTravelMode(%q) = %q,%v want %q,%v", tt.msg, got, ok, tt.want, tt.found)
		}
	}
}
