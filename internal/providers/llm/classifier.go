package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/vaani/internal/config"
	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/pkg/log"
	"github.com/sandevgo/vaani/pkg/retry"
)

// coercedConfidence is assigned when the remote model answers with a tag
// outside the closed taxonomy and we coerce to chat.
const coercedConfidence = 0.4

// Classifier implements core.SemanticClassifier and core.RelationClassifier
// over an OpenAI-compatible chat-completions endpoint.
type Classifier struct {
	baseProvider
	timeout      time.Duration
	historyTurns int
	tokenBudget  int
	retrier      *retry.Retrier
}

func NewClassifier(cfg *config.RemoteClassifierConfig) *Classifier {
	return &Classifier{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		timeout:      cfg.Timeout,
		historyTurns: cfg.HistoryTurns,
		tokenBudget:  cfg.HistoryTokenBudget,
		// At most one retry: latency stays bounded, a flaky first attempt
		// still gets a second chance.
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    1,
			BackoffFactor: 1,
			InitialDelay:  150 * time.Millisecond,
			MaxDelay:      150 * time.Millisecond,
			Jitter:        50 * time.Millisecond,
		}),
	}
}

// Classify asks the remote model for an intent. On any transport, timeout
// or shape failure it returns core.ErrRemoteUnavailable; out-of-taxonomy
// tags are coerced to chat with reduced confidence, never propagated.
func (c *Classifier) Classify(ctx context.Context, message string, history []core.Turn) (*core.ClassificationResult, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", core.ErrValidation)
	}

	messages := make([]chatMessage, 0, len(classifyFewShot)+3)
	messages = append(messages, chatMessage{Role: "system", Content: classifySystemPrompt})
	messages = append(messages, classifyFewShot...)
	if serialized := serializeHistory(history, c.historyTurns, c.tokenBudget); serialized != "" {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: "Recent conversation:\n" + serialized,
		})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	content, err := c.chatBounded(ctx, messages)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Intent     string        `json:"intent"`
		Confidence float64       `json:"confidence"`
		Entities   core.Entities `json:"entities"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("content", content).Msg("malformed classifier response")
		return nil, fmt.Errorf("%w: malformed response", core.ErrRemoteUnavailable)
	}

	result := &core.ClassificationResult{
		Confidence: clamp(parsed.Confidence),
		Entities:   parsed.Entities,
		Source:     core.SourceRemote,
		QueryText:  message,
	}
	if result.Entities == nil {
		result.Entities = core.Entities{}
	}

	intent, ok := core.ParseIntent(parsed.Intent)
	result.Intent = intent
	if !ok {
		log.FromCtx(ctx).Warn().Str("intent", parsed.Intent).Msg("out-of-taxonomy intent coerced to chat")
		result.Confidence = coercedConfidence
	}
	return result, nil
}

// ClassifyRelation asks the remote model how the message relates to recent
// history. Same failure discipline as Classify.
func (c *Classifier) ClassifyRelation(ctx context.Context, message string, history []core.Turn) (*core.ContextDecision, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", core.ErrValidation)
	}

	messages := []chatMessage{
		{Role: "system", Content: relationSystemPrompt},
	}
	if serialized := serializeHistory(history, c.historyTurns, c.tokenBudget); serialized != "" {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: "Recent conversation:\n" + serialized,
		})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	content, err := c.chatBounded(ctx, messages)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Relation   string        `json:"relation"`
		UseContext bool          `json:"use_context"`
		Confidence float64       `json:"confidence"`
		Entities   core.Entities `json:"entities"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("content", content).Msg("malformed relation response")
		return nil, fmt.Errorf("%w: malformed response", core.ErrRemoteUnavailable)
	}

	decision := &core.ContextDecision{
		UseContext:      parsed.UseContext,
		Relation:        core.Relation(parsed.Relation),
		EntitiesToReuse: parsed.Entities,
		Confidence:      clamp(parsed.Confidence),
		Reason:          "remote relation classifier",
	}
	if decision.EntitiesToReuse == nil {
		decision.EntitiesToReuse = core.Entities{}
	}
	return decision, nil
}

// chatBounded runs one chat call under the hard timeout with at most one
// retry. Every failure mode collapses to ErrRemoteUnavailable.
func (c *Classifier) chatBounded(ctx context.Context, messages []chatMessage) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var content string
	err := c.retrier.Do(callCtx, func() error {
		var chatErr error
		content, chatErr = c.chat(callCtx, messages)
		return chatErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Caller went away; don't dress this up as a provider fault.
			return "", err
		}
		return "", fmt.Errorf("%w: %v", core.ErrRemoteUnavailable, err)
	}
	return content, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
