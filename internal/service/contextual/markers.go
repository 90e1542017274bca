package contextual

import (
	"regexp"
	"strings"

	"github.com/sandevgo/vaani/internal/core"
)

// Discourse markers. Matching is containment on the normalized message;
// phrases are kept short and unambiguous across transliteration styles.

var newTopicMarkers = []string{
	"by the way", "btw", "forget that", "forget it", "leave it",
	"something else", "new question", "chodo", "chhodo", "rehne do",
	"woh chodo", "kuch aur", "ek aur baat", "waise",
}

var continuationMarkers = []string{
	"more", "tell me more", "aur batao", "aur bata", "aur dikhao",
	"and then", "what else", "aur kya", "continue", "aage batao",
	"next", "agla", "aur suna",
}

// referential pronouns signal the message leans on prior entities.
var referentialPronouns = []string{
	"it", "that", "this", "same", "wahi", "vahi", "uska", "iska",
	"uski", "iski", "usme", "isme", "waha", "wahan", "vaha",
}

// ackStoplist keeps bare acknowledgements and greetings from being read as
// short-message continuations.
var ackStoplist = map[string]struct{}{
	"ok": {}, "okay": {}, "okk": {}, "thik": {}, "thik hai": {}, "theek": {},
	"theek hai": {}, "thanks": {},
	"thank you": {}, "thx": {}, "shukriya": {}, "dhanyawad": {}, "accha": {},
	"acha": {}, "hmm": {}, "haan": {}, "yes": {}, "no": {}, "nahi": {},
	"bye": {}, "good": {}, "nice": {}, "great": {}, "cool": {}, "wow": {},
	"hi": {}, "hello": {}, "hey": {}, "namaste": {},
}

// travel mode markers: a bare mode change against a travel-domain turn is a
// parameter modification, not a new topic.
var travelModes = []struct {
	words []string
	mode  string
}{
	{[]string{"car", "gaadi", "gadi", "by road", "road se", "drive"}, "car"},
	{[]string{"bus"}, "bus"},
	{[]string{"flight", "plane", "hawai", "by air"}, "flight"},
	{[]string{"train", "rail"}, "train"},
	{[]string{"bike", "scooter"}, "bike"},
}

// travelIntents is the domain with recognized travel-mode modifications.
var travelIntents = map[core.Intent]struct{}{
	core.IntentTrainJourney:         {},
	core.IntentTrainBetweenStations: {},
	core.IntentBusRoute:             {},
	core.IntentMetroRoute:           {},
	core.IntentDistance:             {},
	core.IntentFlightStatus:         {},
}

// locationIntents accept a bare new location fragment as a modification.
var locationIntents = map[core.Intent]struct{}{
	core.IntentWeather:          {},
	core.IntentWeatherForecast:  {},
	core.IntentAirQuality:       {},
	core.IntentLocalSearch:      {},
	core.IntentFoodSearch:       {},
	core.IntentRestaurantSearch: {},
	core.IntentEventsNearby:     {},
	core.IntentMoviesNearby:     {},
	core.IntentNearbyATM:        {},
	core.IntentNearbyHospital:   {},
	core.IntentGoldPrice:        {},
	core.IntentFuelPrice:        {},
	core.IntentPanchang:         {},
}

// dateIntents accept a bare new date fragment as a modification.
var dateIntents = map[core.Intent]struct{}{
	core.IntentWeather:          {},
	core.IntentWeatherForecast:  {},
	core.IntentGetHoroscope:     {},
	core.IntentPanchang:         {},
	core.IntentTrainStatus:      {},
	core.IntentSeatAvailability: {},
	core.IntentEventsNearby:     {},
}

// clarifyKeywords map a candidate intent to the words that pick it when the
// user answers a clarifying question.
var clarifyKeywords = map[core.Intent][]string{
	core.IntentTrainStatus:     {"train", "rail"},
	core.IntentPNRStatus:       {"pnr", "ticket", "booking"},
	core.IntentFlightStatus:    {"flight", "plane", "hawai"},
	core.IntentGoldPrice:       {"gold", "sona", "sone", "silver", "chandi"},
	core.IntentFuelPrice:       {"petrol", "diesel", "fuel", "cng"},
	core.IntentCurrencyConvert: {"dollar", "currency", "usd", "exchange"},
	core.IntentTrainJourney:    {"train", "journey", "safar"},
}

var fullRouteRe = regexp.MustCompile(`(?i)\bfrom\s+\w+\s+to\s+\w+\b|\b\w+\s+se\s+\w+\s+(jana|jaana|tak)\b`)

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "!.?,")
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(normalized string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(normalized, m) {
			return true
		}
	}
	return false
}

func containsWord(normalized, word string) bool {
	for _, tok := range strings.Fields(normalized) {
		if strings.Trim(tok, ".,!?") == word {
			return true
		}
	}
	return false
}

func hasReferentialPronoun(normalized string) bool {
	for _, p := range referentialPronouns {
		if containsWord(normalized, p) {
			return true
		}
	}
	return false
}

func isAck(normalized string) bool {
	_, ok := ackStoplist[normalized]
	return ok
}

func matchTravelMode(normalized string) (string, bool) {
	for _, tm := range travelModes {
		for _, w := range tm.words {
			if strings.Contains(w, " ") && strings.Contains(normalized, w) {
				return tm.mode, true
			}
			if containsWord(normalized, w) {
				return tm.mode, true
			}
		}
	}
	return "", false
}
