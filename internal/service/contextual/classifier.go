// Package contextual reconciles the current message with session history.
// Each call is a pure decision over (message, context snapshot, language);
// only the final escalation step touches the network, and a failure there
// degrades to an explicit low-confidence default, never an error.
package contextual

import (
	"context"
	"strings"

	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/internal/service/intent"
	"github.com/sandevgo/vaani/pkg/log"
)

type Classifier struct {
	matcher *intent.Matcher
	remote  core.RelationClassifier // optional escalation, may be nil
}

func NewClassifier(matcher *intent.Matcher, remote core.RelationClassifier) *Classifier {
	return &Classifier{matcher: matcher, remote: remote}
}

// Decide determines the relationship between message and the session's
// prior state. Rules are evaluated in order; the first applicable wins.
func (c *Classifier) Decide(ctx context.Context, message string, conv *core.ConversationContext, lang string) core.ContextDecision {
	// 1. No prior state: trivially a new topic.
	if conv == nil || len(conv.Turns) == 0 {
		return core.ContextDecision{
			UseContext: false,
			Relation:   core.RelationNewTopic,
			Confidence: 1.0,
			Reason:     "no prior context",
		}
	}

	normalized := normalize(message)
	active := conv.ActiveEntities.Clone()

	// 2. A fully-specified new request always wins over stale context.
	if c.isFullySpecified(message, lang) {
		return core.ContextDecision{
			UseContext: false,
			Relation:   core.RelationNewTopic,
			Confidence: 0.95,
			Reason:     "message is a complete new request",
		}
	}

	// 3. Explicit topic-switch discourse marker.
	if containsAny(normalized, newTopicMarkers) {
		return core.ContextDecision{
			UseContext: false,
			Relation:   core.RelationNewTopic,
			Confidence: 0.9,
			Reason:     "new-topic marker",
		}
	}

	// 4. Explicit continuation marker.
	if containsAny(normalized, continuationMarkers) {
		return core.ContextDecision{
			UseContext:      true,
			Relation:        core.RelationContinuation,
			EntitiesToReuse: active,
			Confidence:      0.9,
			Reason:          "continuation marker",
		}
	}

	// Clarification answer: the previous turn asked which intent was meant.
	if d, ok := c.clarificationAnswer(normalized, conv, active); ok {
		return d
	}

	// 5. Domain-specific parameter modifications.
	if d, ok := c.modification(message, normalized, conv, active, lang); ok {
		return d
	}

	// 6. Heuristic quick checks.
	tokens := len(strings.Fields(normalized))
	if len(active) > 0 && !isAck(normalized) {
		if tokens <= 2 {
			return core.ContextDecision{
				UseContext:      true,
				Relation:        core.RelationContinuation,
				EntitiesToReuse: active,
				Confidence:      0.8,
				Reason:          "short follow-up",
			}
		}
		if hasReferentialPronoun(normalized) {
			return core.ContextDecision{
				UseContext:      true,
				Relation:        core.RelationContinuation,
				EntitiesToReuse: active,
				Confidence:      0.85,
				Reason:          "referential pronoun",
			}
		}
	}

	// 7. Escalate; degrade deterministically on failure.
	if c.remote != nil {
		history := conv.Turns
		if len(history) > 3 {
			history = history[len(history)-3:]
		}
		decision, err := c.remote.ClassifyRelation(ctx, message, history)
		if err == nil && decision != nil {
			return c.sanitize(*decision, active, message, lang)
		}
		log.FromCtx(ctx).Warn().Err(err).Msg("relation escalation failed, using fallback")
	}

	if tokens <= 4 && len(active) > 0 && !isAck(normalized) {
		return core.ContextDecision{
			UseContext:      true,
			Relation:        core.RelationContinuation,
			EntitiesToReuse: active,
			Confidence:      0.6,
			Reason:          "fallback: short message with active entities",
		}
	}
	return core.ContextDecision{
		UseContext: false,
		Relation:   core.RelationNewTopic,
		Confidence: 0.5,
		Reason:     "fallback: undecided",
	}
}

// isFullySpecified reports whether the message alone carries a complete new
// request: an explicit route, or a high-confidence cascade match with at
// least one concrete entity.
func (c *Classifier) isFullySpecified(message, lang string) bool {
	if fullRouteRe.MatchString(message) {
		return true
	}
	if c.matcher == nil {
		return false
	}
	res := c.matcher.Match(message, lang)
	return res != nil && res.Confidence >= 0.9 && len(res.Entities) > 0
}

// clarificationAnswer resolves a reply to a previous clarify turn by
// matching the message against the stored candidate intents.
func (c *Classifier) clarificationAnswer(normalized string, conv *core.ConversationContext, active core.Entities) (core.ContextDecision, bool) {
	if conv.LastIntent != core.IntentClarify {
		return core.ContextDecision{}, false
	}
	raw, _ := active["candidates"].(string)
	if raw == "" {
		return core.ContextDecision{}, false
	}

	var picked core.Intent
	matches := 0
	for _, cand := range strings.Split(raw, ",") {
		it := core.Intent(strings.TrimSpace(cand))
		for _, kw := range clarifyKeywords[it] {
			if strings.Contains(normalized, kw) {
				picked = it
				matches++
				break
			}
		}
	}
	if matches != 1 {
		return core.ContextDecision{}, false
	}

	reuse := active.Clone()
	delete(reuse, "candidates")
	reuse["pending_intent"] = picked.String()
	return core.ContextDecision{
		UseContext:      true,
		Relation:        core.RelationClarification,
		EntitiesToReuse: reuse,
		Confidence:      0.9,
		Reason:          "answer to clarifying question",
	}, true
}

// modification detects an in-domain parameter change against the prior turn.
// Reused entities are prior active entities with the parsed delta merged on
// top; delta keys win over stale keys.
func (c *Classifier) modification(message, normalized string, conv *core.ConversationContext, active core.Entities, lang string) (core.ContextDecision, bool) {
	prior := conv.LastIntent

	if _, ok := travelIntents[prior]; ok {
		if mode, found := matchTravelMode(normalized); found {
			delta := core.Entities{"travel_mode": mode}
			if mode == "car" || mode == "bike" {
				delta["road_trip"] = true
			}
			return core.ContextDecision{
				UseContext:      true,
				Relation:        core.RelationModification,
				EntitiesToReuse: active.Merge(delta),
				Confidence:      0.9,
				Reason:          "travel mode change",
			}, true
		}
	}

	if _, ok := locationIntents[prior]; ok {
		if city, found := intent.FindCity(message, lang); found {
			prev, _ := active["city"].(string)
			if !strings.EqualFold(prev, city) {
				return core.ContextDecision{
					UseContext:      true,
					Relation:        core.RelationModification,
					EntitiesToReuse: active.Merge(core.Entities{"city": city}),
					Confidence:      0.85,
					Reason:          "location change",
				}, true
			}
		}
	}

	if _, ok := dateIntents[prior]; ok {
		if date, found := intent.FindDate(message); found {
			return core.ContextDecision{
				UseContext:      true,
				Relation:        core.RelationModification,
				EntitiesToReuse: active.Merge(core.Entities{"date": date}),
				Confidence:      0.8,
				Reason:          "date change",
			}, true
		}
	}

	return core.ContextDecision{}, false
}

// sanitize enforces the entity-containment invariant on a remote decision:
// entities_to_reuse must trace to active entities or deltas parsed from the
// current message — never fabricated keys.
func (c *Classifier) sanitize(d core.ContextDecision, active core.Entities, message, lang string) core.ContextDecision {
	allowed := active.Clone()
	if city, ok := intent.FindCity(message, lang); ok {
		allowed["city"] = city
	}
	if date, ok := intent.FindDate(message); ok {
		allowed["date"] = date
	}
	if mode, ok := matchTravelMode(normalize(message)); ok {
		allowed["travel_mode"] = mode
		if mode == "car" || mode == "bike" {
			allowed["road_trip"] = true
		}
	}

	filtered := core.Entities{}
	for k := range d.EntitiesToReuse {
		if v, ok := allowed[k]; ok {
			filtered[k] = v
		}
	}
	d.EntitiesToReuse = filtered

	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
	switch d.Relation {
	case core.RelationContinuation, core.RelationModification,
		core.RelationClarification, core.RelationNewTopic:
	default:
		d.Relation = core.RelationNewTopic
		d.UseContext = false
	}
	return d
}
