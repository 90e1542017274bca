// Package intent implements the deterministic pattern cascade that performs
// fast local intent classification. Rules are data (rules.yaml), evaluated
// in a total priority order; the first matching rule wins and no later rule
// is considered.
package intent

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sandevgo/vaani/internal/core"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// patternGroupSpec is one language-scoped keyword/regex group as written in
// rules.yaml. Empty languages means language-agnostic.
type patternGroupSpec struct {
	Languages []string `yaml:"languages"`
	Keywords  []string `yaml:"keywords"`
	Regexes   []string `yaml:"regexes"`
}

type ruleSpec struct {
	Intent     string             `yaml:"intent"`
	Priority   int                `yaml:"priority"`
	Confidence float64            `yaml:"confidence"`
	Patterns   []patternGroupSpec `yaml:"patterns"`
	Extractors []string           `yaml:"extractors"`
}

type rulesFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// patternGroup is a compiled pattern group.
type patternGroup struct {
	languages map[string]struct{} // empty = any language
	keywords  []string            // lowercase, matched by containment
	regexes   []*regexp.Regexp
}

func (g *patternGroup) appliesTo(lang string) bool {
	if len(g.languages) == 0 {
		return true
	}
	_, ok := g.languages[lang]
	return ok
}

func (g *patternGroup) matches(lowered, raw string) bool {
	for _, kw := range g.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	for _, re := range g.regexes {
		if re.MatchString(raw) {
			return true
		}
	}
	return false
}

// Rule is one compiled cascade entry. Static configuration, never mutated
// at runtime.
type Rule struct {
	Intent     core.Intent
	Priority   int
	Confidence float64
	groups     []patternGroup
	extractors []Extractor
}

func (r *Rule) matches(lowered, raw, lang string) bool {
	for i := range r.groups {
		g := &r.groups[i]
		if !g.appliesTo(lang) {
			continue
		}
		if g.matches(lowered, raw) {
			return true
		}
	}
	return false
}

// LoadRules parses and compiles the embedded rule table. Validation is
// strict: unknown intents, duplicate priorities, bad regexes and unknown
// extractor names are load-time errors, so the priority order stays total
// and auditable.
func LoadRules() ([]Rule, error) {
	return loadRules(rulesYAML)
}

func loadRules(data []byte) ([]Rule, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules table is empty")
	}

	seen := make(map[int]string, len(file.Rules))
	rules := make([]Rule, 0, len(file.Rules))
	for _, spec := range file.Rules {
		it, ok := core.ParseIntent(spec.Intent)
		if !ok {
			return nil, fmt.Errorf("rule %q: intent outside taxonomy", spec.Intent)
		}
		if prev, dup := seen[spec.Priority]; dup {
			return nil, fmt.Errorf("rules %q and %q share priority %d", prev, spec.Intent, spec.Priority)
		}
		seen[spec.Priority] = spec.Intent

		if spec.Confidence <= 0 || spec.Confidence > 1 {
			return nil, fmt.Errorf("rule %q: confidence %v out of range", spec.Intent, spec.Confidence)
		}
		if len(spec.Patterns) == 0 {
			return nil, fmt.Errorf("rule %q: no pattern groups", spec.Intent)
		}

		rule := Rule{
			Intent:     it,
			Priority:   spec.Priority,
			Confidence: spec.Confidence,
		}
		for _, g := range spec.Patterns {
			pg := patternGroup{languages: make(map[string]struct{}, len(g.Languages))}
			for _, l := range g.Languages {
				pg.languages[l] = struct{}{}
			}
			for _, kw := range g.Keywords {
				pg.keywords = append(pg.keywords, strings.ToLower(kw))
			}
			for _, expr := range g.Regexes {
				re, err := regexp.Compile(expr)
				if err != nil {
					return nil, fmt.Errorf("rule %q: regex %q: %w", spec.Intent, expr, err)
				}
				pg.regexes = append(pg.regexes, re)
			}
			if len(pg.keywords) == 0 && len(pg.regexes) == 0 {
				return nil, fmt.Errorf("rule %q: empty pattern group", spec.Intent)
			}
			rule.groups = append(rule.groups, pg)
		}
		for _, name := range spec.Extractors {
			ex, ok := extractorRegistry[name]
			if !ok {
				return nil, fmt.Errorf("rule %q: unknown extractor %q", spec.Intent, name)
			}
			rule.extractors = append(rule.extractors, ex)
		}
		rules = append(rules, rule)
	}

	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return rules, nil
}
