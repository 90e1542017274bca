//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/sandevgo/vaani/internal/config"
	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/internal/providers/llm"
	"github.com/sandevgo/vaani/test"
)

func TestRemoteClassifier(t *testing.T) {
	test.RequireClassifierKey(t)

	cfg := config.NewRemoteClassifierConfig(context.Background())
	classifier := llm.NewClassifier(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := classifier.Classify(ctx, "kya aaj baarish hogi shaam ko?", nil)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	t.Logf("intent=%s confidence=%.2f entities=%v", res.Intent, res.Confidence, res.Entities)

	if !res.Intent.Valid() {
		t.Fatalf("intent %q outside taxonomy", res.Intent)
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Fatalf("confidence %v out of range", res.Confidence)
	}
	if res.Source != core.SourceRemote {
		t.Fatalf("source = %s, want remote", res.Source)
	}
}

func TestRemoteRelationClassifier(t *testing.T) {
	test.RequireClassifierKey(t)

	cfg := config.NewRemoteClassifierConfig(context.Background())
	classifier := llm.NewClassifier(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	history := []core.Turn{
		{
			Text:      "weather in Mumbai",
			Intent:    core.IntentWeather,
			Entities:  core.Entities{"city": "Mumbai"},
			Language:  "en",
			Timestamp: time.Now().Add(-time.Minute),
		},
	}

	decision, err := classifier.ClassifyRelation(ctx, "aur kal ka?", history)
	if err != nil {
		t.Fatalf("ClassifyRelation failed: %v", err)
	}

	t.Logf("relation=%s use_context=%v confidence=%.2f", decision.Relation, decision.UseContext, decision.Confidence)

	switch decision.Relation {
	case core.RelationNewTopic, core.RelationContinuation, core.RelationModification, core.RelationClarification:
	default:
		t.Fatalf("unknown relation %q", decision.Relation)
	}
}
