package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sandevgo/vaani/pkg/log"
)

const detectSystemPrompt = `Identify the language of the user message.
Romanized Hindi/Hinglish counts as "hi". Output only JSON:
{"language": "<ISO-639-1 code>"}`

// detectTimeout is deliberately tighter than the classifier timeout:
// language detection is an optional refinement, not worth waiting for.
const detectTimeout = 2 * time.Second

// Detector implements core.LanguageDetector for script-ambiguous text,
// sharing the classifier's provider client. Returns "" on any failure so
// the heuristic answer stands.
type Detector struct {
	classifier *Classifier
}

func NewDetector(classifier *Classifier) *Detector {
	return &Detector{classifier: classifier}
}

func (d *Detector) Detect(ctx context.Context, text string) string {
	callCtx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	content, err := d.classifier.chat(callCtx, []chatMessage{
		{Role: "system", Content: detectSystemPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("remote language detection failed")
		return ""
	}

	var parsed struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		return ""
	}
	return parsed.Language
}
