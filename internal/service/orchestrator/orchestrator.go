// Package orchestrator sequences the classification pipeline: special-message
// short-circuits, the pattern cascade, the context merge and the remote
// fallback. Resolve always returns exactly one ClassificationResult; no error
// crosses this boundary.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/internal/service/contextual"
	"github.com/sandevgo/vaani/internal/service/intent"
	"github.com/sandevgo/vaani/pkg/log"
)

type Config struct {
	// PatternConfident gates an immediate return of a cascade match when no
	// session context exists.
	PatternConfident float64
	// ContextTrust gates whether a context decision may override a
	// separately-computed pattern match.
	ContextTrust float64
}

func DefaultConfig() Config {
	return Config{PatternConfident: 0.9, ContextTrust: 0.7}
}

type Orchestrator struct {
	cfg        Config
	store      core.ContextStore
	detector   core.LanguageDetector
	matcher    *intent.Matcher
	contextual *contextual.Classifier
	remote     core.SemanticClassifier // may be nil: fallback policy applies
}

func New(
	cfg Config,
	store core.ContextStore,
	detector core.LanguageDetector,
	matcher *intent.Matcher,
	ctxClassifier *contextual.Classifier,
	remote core.SemanticClassifier,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		detector:   detector,
		matcher:    matcher,
		contextual: ctxClassifier,
		remote:     remote,
	}
}

// Handle classifies one inbound message and commits the completed turn.
// The append happens exactly once, after the final result, and is skipped
// when the caller has already gone away.
func (o *Orchestrator) Handle(ctx context.Context, msg core.IncomingMessage) core.ClassificationResult {
	result := o.Resolve(ctx, msg)

	if ctx.Err() != nil {
		// Cancelled mid-flight: report the result but commit nothing.
		return result
	}

	turn := core.Turn{
		ID:        uuid.NewString(),
		Text:      msg.Text,
		Intent:    result.Intent,
		Entities:  result.Entities,
		Language:  result.Language,
		Timestamp: msg.Timestamp,
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	if err := o.store.Append(ctx, msg.SessionID, turn); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("session", msg.SessionID).Msg("failed to append turn")
	}
	return result
}

// Resolve runs the pipeline without mutating session state.
func (o *Orchestrator) Resolve(ctx context.Context, msg core.IncomingMessage) core.ClassificationResult {
	logger := log.FromCtx(ctx)

	// 1. Special message types and pending-question answers.
	if res, ok := o.shortCircuit(ctx, msg); ok {
		return o.finalize(ctx, res)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		// Validation failure resolves locally: a deterministic chat result
		// asking for more input, never a propagated error.
		return core.ClassificationResult{
			Intent:     core.IntentChat,
			Confidence: 1.0,
			Entities:   core.Entities{},
			Source:     core.SourcePattern,
			QueryText:  "",
			Language:   language(ctx, o.detector, msg.Text),
			Error:      core.ErrValidation.Error(),
		}
	}

	lang := language(ctx, o.detector, text)

	// 2. Pattern cascade.
	patternRes := o.matcher.Match(text, lang)
	if patternRes != nil {
		patternRes.Language = lang
	}

	conv := o.loadContext(ctx, msg.SessionID)
	hasContext := conv != nil && len(conv.Turns) > 0

	if patternRes != nil && !hasContext && patternRes.Confidence >= o.cfg.PatternConfident {
		return o.finalize(ctx, *patternRes)
	}

	// 3. Context merge.
	if hasContext {
		decision := o.contextual.Decide(ctx, text, conv, lang)
		logger.Debug().
			Str("relation", string(decision.Relation)).
			Float64("confidence", decision.Confidence).
			Str("reason", decision.Reason).
			Msg("context decision")

		if res, ok := o.merge(conv, decision, patternRes, text, lang); ok {
			return o.finalize(ctx, res)
		}
	}

	// A fired rule is conclusive even below the fully-confident bar.
	if patternRes != nil && patternRes.Confidence >= o.cfg.ContextTrust {
		return o.finalize(ctx, *patternRes)
	}

	// 4. Remote fallback.
	return o.finalize(ctx, o.remoteFallback(ctx, text, lang, conv))
}

// shortCircuit handles non-text message types and answers to pending
// clarifying questions. These return immediately with confidence 1.0.
func (o *Orchestrator) shortCircuit(ctx context.Context, msg core.IncomingMessage) (core.ClassificationResult, bool) {
	logger := log.FromCtx(ctx)

	pending, err := o.store.PeekPending(ctx, msg.SessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("pending lookup failed, continuing without")
		pending = nil
	}

	switch msg.Type {
	case core.MessageLocation:
		entities := core.Entities{}
		if msg.Coordinates != nil {
			entities["lat"] = msg.Coordinates.Lat
			entities["lon"] = msg.Coordinates.Lon
		}
		intentTag := core.IntentLocalSearch
		if pending != nil && pending.Kind == core.PendingLocation {
			// The location answers the question the previous turn asked.
			intentTag = pending.Intent
			entities = pending.Entities.Merge(entities)
			o.clearPending(ctx, msg.SessionID)
		}
		return core.ClassificationResult{
			Intent:     intentTag,
			Confidence: 1.0,
			Entities:   entities,
			Source:     core.SourcePattern,
			QueryText:  msg.Text,
			Language:   language(ctx, o.detector, msg.Text),
		}, true

	case core.MessageImage:
		return core.ClassificationResult{
			Intent:     core.IntentChat,
			Confidence: 1.0,
			Entities:   core.Entities{},
			Source:     core.SourcePattern,
			QueryText:  msg.Text,
			Language:   language(ctx, o.detector, msg.Text),
		}, true
	}

	if pending != nil && pending.Kind == core.PendingReminder && strings.TrimSpace(msg.Text) != "" {
		entities := pending.Entities.Merge(core.Entities{"reminder_text": strings.TrimSpace(msg.Text)})
		o.clearPending(ctx, msg.SessionID)
		return core.ClassificationResult{
			Intent:     pending.Intent,
			Confidence: 1.0,
			Entities:   entities,
			Source:     core.SourcePattern,
			QueryText:  msg.Text,
			Language:   language(ctx, o.detector, msg.Text),
		}, true
	}

	return core.ClassificationResult{}, false
}

// merge applies the context decision to the pattern result. The second
// return is false when the decision does not settle the classification.
func (o *Orchestrator) merge(conv *core.ConversationContext, decision core.ContextDecision, patternRes *core.ClassificationResult, text, lang string) (core.ClassificationResult, bool) {
	patternConfident := patternRes != nil && patternRes.Confidence >= o.cfg.PatternConfident

	if decision.Relation == core.RelationNewTopic || !decision.UseContext {
		if patternRes != nil {
			return *patternRes, true
		}
		return core.ClassificationResult{}, false
	}

	if decision.Confidence < o.cfg.ContextTrust {
		if patternRes != nil {
			return *patternRes, true
		}
		return core.ClassificationResult{}, false
	}

	switch decision.Relation {
	case core.RelationContinuation:
		// An independent high-confidence match beats a mere continuation.
		if patternConfident {
			return *patternRes, true
		}
		return core.ClassificationResult{
			Intent:     conv.LastIntent,
			Confidence: decision.Confidence,
			Entities:   decision.EntitiesToReuse,
			Source:     core.SourceContext,
			QueryText:  text,
			Language:   lang,
		}, true

	case core.RelationModification:
		return core.ClassificationResult{
			Intent:     conv.ActiveTopic,
			Confidence: decision.Confidence,
			Entities:   decision.EntitiesToReuse,
			Source:     core.SourceContext,
			QueryText:  text,
			Language:   lang,
		}, true

	case core.RelationClarification:
		// Recover the intent that originally asked the question.
		entities := decision.EntitiesToReuse.Clone()
		raw, _ := entities["pending_intent"].(string)
		delete(entities, "pending_intent")
		recovered, ok := core.ParseIntent(raw)
		if !ok {
			return core.ClassificationResult{}, false
		}
		return core.ClassificationResult{
			Intent:     recovered,
			Confidence: decision.Confidence,
			Entities:   entities,
			Source:     core.SourceContext,
			QueryText:  text,
			Language:   lang,
		}, true
	}

	return core.ClassificationResult{}, false
}

// remoteFallback invokes the remote classifier and applies the default
// policy when it fails: chat at 0.5, error attached for observability.
func (o *Orchestrator) remoteFallback(ctx context.Context, text, lang string, conv *core.ConversationContext) core.ClassificationResult {
	var history []core.Turn
	if conv != nil {
		history = conv.Turns
	}

	// No remote configured: the message is simply ambiguous to the local
	// cascades, not a provider fault.
	fallbackErr := core.ErrAmbiguous
	if o.remote != nil {
		res, err := o.remote.Classify(ctx, text, history)
		if err == nil && res != nil {
			res.QueryText = text
			res.Language = lang
			return *res
		}
		log.FromCtx(ctx).Warn().Err(err).Msg("remote classification failed")
		fallbackErr = core.ErrRemoteUnavailable
	}

	return core.ClassificationResult{
		Intent:     core.IntentChat,
		Confidence: 0.5,
		Entities:   core.Entities{},
		Source:     core.SourceFallback,
		QueryText:  text,
		Language:   lang,
		Error:      fallbackErr.Error(),
	}
}

// finalize enforces the entity schema at the boundary: keys outside the
// intent's declared field set are dropped, not forwarded.
func (o *Orchestrator) finalize(ctx context.Context, res core.ClassificationResult) core.ClassificationResult {
	validated, dropped := core.ValidateEntities(res.Intent, res.Entities)
	if len(dropped) > 0 {
		log.FromCtx(ctx).Debug().
			Str("intent", res.Intent.String()).
			Strs("dropped", dropped).
			Msg("dropped out-of-schema entities")
	}
	res.Entities = validated
	if !res.Intent.Valid() {
		res.Intent = core.IntentChat
	}
	return res
}

// loadContext degrades a store failure to "no context": a broken store
// must never abort classification.
func (o *Orchestrator) loadContext(ctx context.Context, sessionID string) *core.ConversationContext {
	conv, err := o.store.Get(ctx, sessionID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("context store unavailable, treating as new session")
		return nil
	}
	return conv
}

func (o *Orchestrator) clearPending(ctx context.Context, sessionID string) {
	if err := o.store.ClearPending(ctx, sessionID); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to clear pending marker")
	}
}

func language(ctx context.Context, detector core.LanguageDetector, text string) string {
	if detector == nil {
		return "en"
	}
	return detector.Detect(ctx, text)
}
