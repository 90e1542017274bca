package intent

import (
	"regexp"
	"strings"

	"github.com/sandevgo/vaani/internal/core"
)

// Special-message rules run before the general cascade: these inputs must
// never be shadowed by a later, broader rule (a greeting must not fall
// through to a generic chat match, a bare booking code must not be read as
// something else).

// greetings are matched against the whole trimmed message, not by
// containment — "hi" is smalltalk, "hi, weather in Pune" is not.
var greetings = map[string]struct{}{
	"hi": {}, "hii": {}, "hiii": {}, "hello": {}, "helo": {}, "hey": {},
	"yo": {}, "hola": {}, "namaste": {}, "namaskar": {}, "namashkar": {},
	"pranam": {}, "salaam": {}, "good morning": {}, "good afternoon": {},
	"good evening": {}, "good night": {}, "gm": {}, "gn": {},
	"kaise ho": {}, "how are you": {}, "whats up": {}, "what's up": {},
	"sup": {}, "ram ram": {}, "jai shri ram": {}, "sat sri akal": {},
}

var helpPhrases = []string{
	"help", "madad", "sahayata", "what can you do", "what do you do",
	"tum kya kar sakte ho", "kya kar sakte ho", "how to use", "commands",
}

var bareNumberRe = regexp.MustCompile(`^\d{10}$`)

// nearMeMarkers flag a location-modifier message; the stripped search term's
// category then picks the intent.
var nearMeMarkers = []string{
	"near me", "nearby", "near by", "close by", "around me",
	"paas mein", "paas me", "ke paas", "mere paas", "aas paas", "aspas",
}

// nearMeCategories maps stripped-term vocabulary to the intent that owns the
// "near me" reading of it. First category with a hit wins; order matters
// (food words before the generic bucket).
var nearMeCategories = []struct {
	intent core.Intent
	words  []string
}{
	{core.IntentNearbyHospital, []string{"hospital", "clinic", "doctor", "emergency", "aspatal", "davakhana"}},
	{core.IntentNearbyATM, []string{"atm", "cash", "bank"}},
	{core.IntentRestaurantSearch, []string{"restaurant", "dhaba", "cafe", "eatery"}},
	{core.IntentFoodSearch, []string{"food", "khana", "biryani", "pizza", "burger", "dosa", "chaat", "sweets", "mithai"}},
	{core.IntentMoviesNearby, []string{"movie", "cinema", "film", "multiplex", "theatre", "theater"}},
	{core.IntentEventsNearby, []string{"event", "events", "concert", "show", "exhibition", "mela"}},
}

// ambiguous phrases route to an explicit clarification instead of a guessed
// intent. Candidates ride along as an entity for the downstream prompt.
var ambiguousPhrases = []struct {
	phrases    []string
	candidates []core.Intent
}{
	{
		phrases:    []string{"status", "status batao", "status check karo", "check status"},
		candidates: []core.Intent{core.IntentTrainStatus, core.IntentPNRStatus, core.IntentFlightStatus},
	},
	{
		phrases:    []string{"rate batao", "price batao", "kya rate hai", "rate kya hai", "price"},
		candidates: []core.Intent{core.IntentGoldPrice, core.IntentFuelPrice, core.IntentCurrencyConvert},
	},
	{
		phrases:    []string{"book karo", "booking"},
		candidates: []core.Intent{core.IntentTrainJourney, core.IntentFlightStatus},
	},
}

func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "!.?,")
	return strings.Join(strings.Fields(s), " ")
}

// matchSpecial evaluates the special-message rules. A non-nil result
// short-circuits the cascade.
func matchSpecial(raw, lang string) *core.ClassificationResult {
	phrase := normalizePhrase(raw)
	if phrase == "" {
		return nil
	}

	if _, ok := greetings[phrase]; ok {
		return &core.ClassificationResult{
			Intent:     core.IntentChat,
			Confidence: 1.0,
			Entities:   core.Entities{},
			Source:     core.SourcePattern,
			QueryText:  raw,
			Language:   lang,
		}
	}

	for _, h := range helpPhrases {
		if phrase == h {
			return &core.ClassificationResult{
				Intent:     core.IntentHelp,
				Confidence: 1.0,
				Entities:   core.Entities{},
				Source:     core.SourcePattern,
				QueryText:  raw,
				Language:   lang,
			}
		}
	}

	// A bare 10-digit number is a booking reference.
	if bareNumberRe.MatchString(phrase) {
		return &core.ClassificationResult{
			Intent:     core.IntentPNRStatus,
			Confidence: 0.95,
			Entities:   core.Entities{"pnr_number": phrase},
			Source:     core.SourcePattern,
			QueryText:  raw,
			Language:   lang,
		}
	}

	if res := matchNearMe(raw, phrase, lang); res != nil {
		return res
	}

	for _, amb := range ambiguousPhrases {
		for _, p := range amb.phrases {
			if phrase == p {
				cands := make([]string, len(amb.candidates))
				for i, c := range amb.candidates {
					cands[i] = c.String()
				}
				return &core.ClassificationResult{
					Intent:     core.IntentClarify,
					Confidence: 0.9,
					Entities:   core.Entities{"candidates": strings.Join(cands, ",")},
					Source:     core.SourcePattern,
					QueryText:  raw,
					Language:   lang,
				}
			}
		}
	}

	return nil
}

func matchNearMe(raw, phrase, lang string) *core.ClassificationResult {
	hasMarker := false
	for _, m := range nearMeMarkers {
		if strings.Contains(phrase, m) {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return nil
	}

	term := stripFillers(phrase)
	intent := core.IntentLocalSearch
	for _, cat := range nearMeCategories {
		for _, w := range cat.words {
			if containsWord(term, w) || containsWord(term, w+"s") {
				intent = cat.intent
				break
			}
		}
		if intent != core.IntentLocalSearch {
			break
		}
	}

	entities := core.Entities{"near_me": true}
	if term != "" {
		entities["search_query"] = term
	}
	return &core.ClassificationResult{
		Intent:     intent,
		Confidence: 0.9,
		Entities:   entities,
		Source:     core.SourcePattern,
		QueryText:  raw,
		Language:   lang,
	}
}
