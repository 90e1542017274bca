package core

import "context"

// SemanticClassifier is the remote structured-output classifier, used only
// when local cascades are inconclusive. Implementations must bound the call
// with a hard timeout and return ErrRemoteUnavailable on any transport,
// timeout or response-shape failure.
type SemanticClassifier interface {
	Classify(ctx context.Context, message string, history []Turn) (*ClassificationResult, error)
}

// RelationClassifier is the remote escalation path of the context
// classifier: it reconciles the current message with recent history into a
// relation plus entity deltas.
type RelationClassifier interface {
	ClassifyRelation(ctx context.Context, message string, history []Turn) (*ContextDecision, error)
}

// LanguageDetector resolves a best-effort ISO-639-1-ish code for a message.
type LanguageDetector interface {
	Detect(ctx context.Context, text string) string
}
