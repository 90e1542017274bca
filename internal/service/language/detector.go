// Package language resolves a best-effort language code for an inbound
// message. Detection is script-first (cheap, deterministic) with a romanized
// keyword pass for Hinglish, escalating to a remote detector only for
// genuinely ambiguous text.
package language

import (
	"context"
	"strings"
	"unicode"

	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/pkg/log"
	"golang.org/x/text/language"
)

const (
	// English  is the default when nothing else fires.
	English = "en"
	Hindi   = "hi"
)

// scriptLangs maps Unicode script ranges to language codes. First script
// with a majority of letter runes wins.
var scriptLangs = []struct {
	script *unicode.RangeTable
	code   string
}{
	{unicode.Devanagari, "hi"},
	{unicode.Bengali, "bn"},
	{unicode.Gurmukhi, "pa"},
	{unicode.Gujarati, "gu"},
	{unicode.Oriya, "or"},
	{unicode.Tamil, "ta"},
	{unicode.Telugu, "te"},
	{unicode.Kannada, "kn"},
	{unicode.Malayalam, "ml"},
}

// hinglishWords are high-frequency romanized Hindi function words. Two hits
// in a message is a strong signal; one hit in a very short message counts.
var hinglishWords = map[string]struct{}{
	"hai": {}, "hain": {}, "kya": {}, "kyu": {}, "kyun": {}, "kaise": {},
	"batao": {}, "bata": {}, "bataye": {}, "mujhe": {}, "mera": {}, "meri": {},
	"aur": {}, "nahi": {}, "nahin": {}, "karo": {}, "karna": {}, "chahiye": {},
	"kaha": {}, "kahan": {}, "kab": {}, "kitna": {}, "kitne": {}, "wala": {},
	"bhai": {}, "yaar": {}, "acha": {}, "accha": {}, "theek": {}, "thik": {},
	"se": {}, "mein": {}, "ke": {}, "ki": {}, "ka": {}, "ho": {}, "hoga": {},
	"dikhao": {}, "dikha": {}, "sunao": {}, "suna": {}, "bolo": {}, "abhi": {},
}

type Detector struct {
	remote core.LanguageDetector // optional escalation, may be nil
}

func NewDetector(remote core.LanguageDetector) *Detector {
	return &Detector{remote: remote}
}

// Detect returns an ISO-639-1-ish code for text. Never fails: ambiguity
// degrades to the heuristic answer, not an error.
func (d *Detector) Detect(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return English
	}

	if code, ok := detectScript(text); ok {
		return code
	}

	hits := hinglishHits(text)
	tokens := len(strings.Fields(text))
	switch {
	case hits >= 2, hits == 1 && tokens <= 3:
		return Hindi
	case hits == 1 && d.remote != nil:
		// Single romanized hit in a longer message is ambiguous.
		code := d.remote.Detect(ctx, text)
		if norm := Normalize(code); norm != "" {
			log.FromCtx(ctx).Debug().Str("code", norm).Msg("remote language detection")
			return norm
		}
	}
	return English
}

// detectScript returns a language code when a majority of letter runes
// belong to one Indic script.
func detectScript(text string) (string, bool) {
	letters := 0
	counts := make(map[string]int, 4)
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, sl := range scriptLangs {
			if unicode.Is(sl.script, r) {
				counts[sl.code]++
				break
			}
		}
	}
	if letters == 0 {
		return "", false
	}
	for code, n := range counts {
		if n*2 > letters {
			return code, true
		}
	}
	return "", false
}

func hinglishHits(text string) int {
	hits := 0
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?")
		if _, ok := hinglishWords[tok]; ok {
			hits++
		}
	}
	return hits
}

// Normalize canonicalizes a raw language code to its ISO-639-1 base tag.
// Returns "" for garbage.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
