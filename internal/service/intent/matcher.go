package intent

import (
	"strings"

	"github.com/sandevgo/vaani/internal/core"
)

// Matcher is the deterministic pattern cascade. A Matcher is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	rules []Rule
}

func NewMatcher() (*Matcher, error) {
	rules, err := LoadRules()
	if err != nil {
		return nil, err
	}
	return &Matcher{rules: rules}, nil
}

// newMatcherFromRules is the test seam for custom rule tables.
func newMatcherFromRules(rules []Rule) *Matcher {
	return &Matcher{rules: rules}
}

// Match classifies message against the cascade. Returns nil when no rule
// fires — the normal fall-through to the context/remote path, not a fault.
func (m *Matcher) Match(message, lang string) *core.ClassificationResult {
	raw := strings.TrimSpace(message)
	if raw == "" {
		return nil
	}

	if res := matchSpecial(raw, lang); res != nil {
		return res
	}

	lowered := strings.ToLower(raw)
	for i := range m.rules {
		rule := &m.rules[i]
		if !rule.matches(lowered, raw, lang) {
			continue
		}
		entities := core.Entities{}
		for _, ex := range rule.extractors {
			entities = entities.Merge(ex(raw, lang))
		}
		return &core.ClassificationResult{
			Intent:     rule.Intent,
			Confidence: rule.Confidence,
			Entities:   entities,
			Source:     core.SourcePattern,
			QueryText:  raw,
			Language:   lang,
		}
	}
	return nil
}

// Rules exposes the compiled table for auditing and tests.
func (m *Matcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}
