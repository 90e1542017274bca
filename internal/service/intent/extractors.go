package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sandevgo/vaani/internal/core"
)

// Extractor pulls entity slots out of the raw message. Extractors run only
// after the owning rule matched, so they can assume domain vocabulary is
// present and stay cheap.
type Extractor func(raw, lang string) core.Entities

var extractorRegistry = map[string]Extractor{
	"city":               extractCity,
	"date":               extractDate,
	"train_number":       extractTrainNumber,
	"pnr_number":         extractPNR,
	"pin_code":           extractPinCode,
	"ifsc_code":          extractIFSC,
	"pan_number":         extractPAN,
	"flight_number":      extractFlightNumber,
	"source_destination": extractSourceDestination,
	"search_query":       extractSearchQuery,
	"sign":               extractSign,
	"term":               extractTerm,
	"target_language":    extractTargetLanguage,
	"amount_currency":    extractAmountCurrency,
	"time_of_day":        extractTimeOfDay,
	"topic":              extractTopic,
	"team":               extractTeam,
	"festival":           extractFestival,
	"fuel_type":          extractFuelType,
	"travel_class":       extractTravelClass,
	"reminder_text":      extractReminderText,
	"prompt_text":        extractPromptText,
}

// knownCities keeps city matching deterministic without a gazetteer
// service. Lowercased; multi-word names listed before their prefixes.
var knownCities = []string{
	"navi mumbai", "new delhi", "mumbai", "delhi", "bangalore", "bengaluru",
	"hyderabad", "chennai", "kolkata", "pune", "ahmedabad", "jaipur",
	"lucknow", "kanpur", "nagpur", "indore", "bhopal", "patna", "vadodara",
	"ludhiana", "agra", "nashik", "varanasi", "surat", "ranchi", "amritsar",
	"allahabad", "prayagraj", "coimbatore", "kochi", "chandigarh", "mysore",
	"guwahati", "bhubaneswar", "dehradun", "shimla", "goa", "gurgaon",
	"gurugram", "noida", "ghaziabad", "faridabad", "thane", "raipur",
	"jodhpur", "udaipur", "madurai", "vijayawada", "visakhapatnam", "srinagar",
}

var (
	cityPrepRe    = regexp.MustCompile(`(?i)\b(?:in|at|for)\s+([A-Za-z]+(?:\s[A-Za-z]+)?)\b`)
	cityPostposRe = regexp.MustCompile(`(?i)\b([a-z]+)\s+(?:mein|me|ka|ki|ke)\b`)
)

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func findKnownCity(lowered string) (string, bool) {
	for _, c := range knownCities {
		if strings.Contains(lowered, c) {
			return titleCase(c), true
		}
	}
	return "", false
}

func extractCity(raw, lang string) core.Entities {
	lowered := strings.ToLower(raw)
	if city, ok := findKnownCity(lowered); ok {
		return core.Entities{"city": city}
	}
	// "in <X>" with an unknown city still beats nothing.
	if m := cityPrepRe.FindStringSubmatch(raw); m != nil {
		words := strings.Fields(strings.ToLower(m[1]))
		if len(words) > 0 && !isStopword(words[0]) {
			return core.Entities{"city": titleCase(m[1])}
		}
	}
	if lang == "hi" {
		if m := cityPostposRe.FindStringSubmatch(lowered); m != nil && !isStopword(m[1]) {
			return core.Entities{"city": titleCase(m[1])}
		}
	}
	return nil
}

// stopwords that look like city candidates after "in"/"mein".
var cityStopwords = map[string]struct{}{
	"the": {}, "my": {}, "this": {}, "that": {}, "morning": {}, "evening": {},
	"hindi": {}, "english": {}, "india": {}, "baare": {}, "bare": {},
	"today": {}, "tomorrow": {}, "week": {}, "aaj": {}, "kal": {},
}

func isStopword(w string) bool {
	_, ok := cityStopwords[strings.ToLower(w)]
	return ok
}

var (
	numericDateRe = regexp.MustCompile(`\b([0-3]?\d)[/-]([01]?\d)(?:[/-](\d{2,4}))?\b`)
	monthDateRe   = regexp.MustCompile(`(?i)\b([0-3]?\d)(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
)

var relativeDates = map[string]string{
	"today": "today", "aaj": "today", "tonight": "today",
	"tomorrow": "tomorrow", "kal": "tomorrow",
	"parso": "day_after", "day after": "day_after",
	"yesterday": "yesterday",
}

func extractDate(raw, lang string) core.Entities {
	lowered := strings.ToLower(raw)
	for marker, norm := range relativeDates {
		if strings.Contains(lowered, marker) {
			return core.Entities{"date": norm}
		}
	}
	if m := numericDateRe.FindString(raw); m != "" {
		return core.Entities{"date": m}
	}
	if m := monthDateRe.FindString(raw); m != "" {
		return core.Entities{"date": strings.ToLower(m)}
	}
	return nil
}

var trainNumberRe = regexp.MustCompile(`\b(\d{4,5})\b`)

func extractTrainNumber(raw, _ string) core.Entities {
	if m := trainNumberRe.FindStringSubmatch(raw); m != nil {
		return core.Entities{"train_number": m[1]}
	}
	return nil
}

var pnrRe = regexp.MustCompile(`\b(\d{10})\b`)

func extractPNR(raw, _ string) core.Entities {
	if m := pnrRe.FindStringSubmatch(raw); m != nil {
		return core.Entities{"pnr_number": m[1]}
	}
	return nil
}

var pinCodeRe = regexp.MustCompile(`\b(\d{6})\b`)

func extractPinCode(raw, _ string) core.Entities {
	if m := pinCodeRe.FindStringSubmatch(raw); m != nil {
		return core.Entities{"pin_code": m[1]}
	}
	return nil
}

var ifscRe = regexp.MustCompile(`\b([A-Z]{4}0[A-Z0-9]{6})\b`)

func extractIFSC(raw, _ string) core.Entities {
	if m := ifscRe.FindStringSubmatch(strings.ToUpper(raw)); m != nil {
		return core.Entities{"ifsc_code": m[1]}
	}
	return nil
}

var panRe = regexp.MustCompile(`\b([A-Z]{5}\d{4}[A-Z])\b`)

func extractPAN(raw, _ string) core.Entities {
	if m := panRe.FindStringSubmatch(strings.ToUpper(raw)); m != nil {
		return core.Entities{"pan_number": m[1]}
	}
	return nil
}

var flightNumberRe = regexp.MustCompile(`\b([A-Z0-9]{2})\s?-?\s?(\d{2,4})\b`)

func extractFlightNumber(raw, _ string) core.Entities {
	if m := flightNumberRe.FindStringSubmatch(strings.ToUpper(raw)); m != nil {
		return core.Entities{"flight_number": m[1] + m[2]}
	}
	return nil
}

var (
	fromToRe = regexp.MustCompile(`(?i)\bfrom\s+([a-z]+(?:\s[a-z]+)?)\s+to\s+([a-z]+(?:\s[a-z]+)?)\b`)
	xToYRe   = regexp.MustCompile(`(?i)\b([a-z]+)\s+to\s+([a-z]+)\b`)
	seTakRe  = regexp.MustCompile(`(?i)\b([a-z]+)\s+se\s+([a-z]+)\b`)
)

func extractSourceDestination(raw, lang string) core.Entities {
	if m := fromToRe.FindStringSubmatch(raw); m != nil {
		return core.Entities{"source_city": titleCase(m[1]), "destination_city": titleCase(m[2])}
	}
	if lang == "hi" {
		if m := seTakRe.FindStringSubmatch(raw); m != nil && !isStopword(m[1]) && !isStopword(m[2]) {
			return core.Entities{"source_city": titleCase(m[1]), "destination_city": titleCase(m[2])}
		}
	}
	if m := xToYRe.FindStringSubmatch(raw); m != nil && !isStopword(m[1]) && !isStopword(m[2]) {
		return core.Entities{"source_city": titleCase(m[1]), "destination_city": titleCase(m[2])}
	}
	return nil
}

// searchFillers are trigger and filler words stripped before the remaining
// text becomes the search term.
var searchFillers = []string{
	"search for", "search", "find me", "find", "look for", "where is",
	"where can i get", "where can i", "dhundo", "dhoondo", "khojo",
	"kaha milega", "kahan milega", "kaha hai", "kahan hai", "near me",
	"nearby", "paas mein", "paas me", "aas paas", "ke paas", "mere paas",
	"batao", "dikhao", "chahiye", "please", "mujhe", "a ", "an ", "the ",
}

func stripFillers(lowered string) string {
	out := " " + lowered + " "
	for _, f := range searchFillers {
		out = strings.ReplaceAll(out, " "+strings.TrimSpace(f)+" ", " ")
	}
	return strings.TrimSpace(strings.Join(strings.Fields(out), " "))
}

func extractSearchQuery(raw, lang string) core.Entities {
	lowered := strings.ToLower(raw)
	q := stripFillers(lowered)
	if city, ok := findKnownCity(lowered); ok {
		q = strings.TrimSpace(strings.ReplaceAll(q, strings.ToLower(city), ""))
		q = strings.TrimSuffix(q, " in")
		q = strings.TrimSpace(strings.TrimSuffix(q, " mein"))
	}
	if q == "" {
		return nil
	}
	return core.Entities{"search_query": q}
}

var zodiacSigns = map[string]string{
	"aries": "aries", "mesh": "aries",
	"taurus": "taurus", "vrishabh": "taurus",
	"gemini": "gemini", "mithun": "gemini",
	"cancer": "cancer", "kark": "cancer",
	"leo": "leo", "singh": "leo",
	"virgo": "virgo", "kanya": "virgo",
	"libra": "libra", "tula": "libra",
	"scorpio": "scorpio", "vrishchik": "scorpio",
	"sagittarius": "sagittarius", "dhanu": "sagittarius",
	"capricorn": "capricorn", "makar": "capricorn",
	"aquarius": "aquarius", "kumbh": "aquarius",
	"pisces": "pisces", "meen": "pisces",
}

func extractSign(raw, _ string) core.Entities {
	lowered := strings.ToLower(raw)
	for alias, sign := range zodiacSigns {
		if containsWord(lowered, alias) {
			return core.Entities{"sign": sign}
		}
	}
	return nil
}

var (
	meaningOfRe = regexp.MustCompile(`(?i)\b(?:meaning|definition)\s+of\s+([a-z]+)\b`)
	kaMatlabRe  = regexp.MustCompile(`(?i)\b([a-z]+)\s+ka\s+(?:matlab|arth)\b`)
	defineRe    = regexp.MustCompile(`(?i)\bdefine\s+([a-z]+)\b`)
	translateRe = regexp.MustCompile(`(?i)\btranslate\s+(.+?)(?:\s+(?:to|in|into)\s+[a-z]+)?\s*$`)
)

func extractTerm(raw, _ string) core.Entities {
	for _, re := range []*regexp.Regexp{meaningOfRe, kaMatlabRe, defineRe, translateRe} {
		if m := re.FindStringSubmatch(raw); m != nil {
			term := strings.Trim(strings.TrimSpace(m[1]), `"'`)
			if term != "" {
				return core.Entities{"term": term}
			}
		}
	}
	return nil
}

var targetLangRe = regexp.MustCompile(`(?i)\b(?:to|in|into)\s+(hindi|english|bengali|tamil|telugu|marathi|gujarati|kannada|malayalam|punjabi|urdu)\b`)

func extractTargetLanguage(raw, _ string) core.Entities {
	if m := targetLangRe.FindStringSubmatch(raw); m != nil {
		return core.Entities{"target_language": strings.ToLower(m[1])}
	}
	return nil
}

var amountCurrencyRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(usd|inr|eur|gbp|aed|dollars?|rupees?|euros?|pounds?)\b`)

var currencyAliases = map[string]string{
	"dollar": "USD", "dollars": "USD", "usd": "USD",
	"rupee": "INR", "rupees": "INR", "inr": "INR",
	"euro": "EUR", "euros": "EUR", "eur": "EUR",
	"pound": "GBP", "pounds": "GBP", "gbp": "GBP",
	"aed": "AED",
}

func extractAmountCurrency(raw, _ string) core.Entities {
	out := core.Entities{}
	if m := amountCurrencyRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out["amount"] = v
		}
		if code, ok := currencyAliases[strings.ToLower(m[2])]; ok {
			out["currency_from"] = code
		}
	}
	if m := targetCurrencyRe.FindStringSubmatch(raw); m != nil {
		if code, ok := currencyAliases[strings.ToLower(m[1])]; ok {
			out["currency_to"] = code
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var targetCurrencyRe = regexp.MustCompile(`(?i)\b(?:to|in|into)\s+(usd|inr|eur|gbp|aed|dollars?|rupees?|euros?|pounds?)\b`)

var timeRe = regexp.MustCompile(`(?i)\b([01]?\d|2[0-3])(?::([0-5]\d))?\s*(am|pm|baje)?\b`)

func extractTimeOfDay(raw, _ string) core.Entities {
	if m := timeRe.FindStringSubmatch(raw); m != nil && (m[2] != "" || m[3] != "") {
		t := m[1]
		if m[2] != "" {
			t += ":" + m[2]
		}
		if m[3] != "" && strings.ToLower(m[3]) != "baje" {
			t += strings.ToLower(m[3])
		}
		return core.Entities{"time": t}
	}
	return nil
}

var topicMarkers = []string{"about ", "on ", "ke baare mein ", "ki khabar"}

func extractTopic(raw, _ string) core.Entities {
	lowered := strings.ToLower(raw)
	for _, marker := range topicMarkers {
		if idx := strings.Index(lowered, marker); idx >= 0 {
			topic := strings.TrimSpace(lowered[idx+len(marker):])
			topic = strings.TrimSuffix(topic, "?")
			if topic != "" && len(strings.Fields(topic)) <= 4 {
				return core.Entities{"topic": topic}
			}
		}
	}
	return nil
}

var cricketTeams = []string{
	"india", "pakistan", "australia", "england", "new zealand", "south africa",
	"sri lanka", "bangladesh", "west indies", "csk", "mumbai indians", "rcb",
	"kkr", "rajasthan royals", "delhi capitals",
}

func extractTeam(raw, _ string) core.Entities {
	lowered := strings.ToLower(raw)
	for _, team := range cricketTeams {
		if strings.Contains(lowered, team) {
			return core.Entities{"team": titleCase(team)}
		}
	}
	return nil
}

var festivals = []string{
	"diwali", "holi", "dussehra", "navratri", "raksha bandhan", "rakhi",
	"eid", "chhath", "pongal", "onam", "ganesh chaturthi", "janmashtami",
	"makar sankranti", "lohri", "baisakhi", "christmas",
}

func extractFestival(raw, _ string) core.Entities {
	lowered := strings.ToLower(raw)
	for _, f := range festivals {
		if strings.Contains(lowered, f) {
			return core.Entities{"festival": titleCase(f)}
		}
	}
	return nil
}

func extractFuelType(raw, _ string) core.Entities {
	lowered := strings.ToLower(raw)
	for _, ft := range []string{"petrol", "diesel", "cng"} {
		if strings.Contains(lowered, ft) {
			return core.Entities{"fuel_type": ft}
		}
	}
	return nil
}

var travelClasses = map[string]string{
	"sleeper": "SL", "sl": "SL", "3ac": "3A", "3a": "3A", "third ac": "3A",
	"2ac": "2A", "2a": "2A", "second ac": "2A", "1ac": "1A", "first ac": "1A",
	"general": "GN", "chair car": "CC",
}

func extractTravelClass(raw, _ string) core.Entities {
	lowered := strings.ToLower(raw)
	for alias, code := range travelClasses {
		if containsWord(lowered, alias) {
			return core.Entities{"travel_class": code}
		}
	}
	return nil
}

var remindMeRe = regexp.MustCompile(`(?i)\bremind me\s+(?:to\s+)?(.+?)(?:\s+(?:at|on|tomorrow|today)\b.*)?$`)

func extractReminderText(raw, _ string) core.Entities {
	if m := remindMeRe.FindStringSubmatch(raw); m != nil {
		text := strings.TrimSpace(m[1])
		if text != "" {
			return core.Entities{"reminder_text": text}
		}
	}
	return nil
}

var promptMarkers = []string{"draw me", "draw a", "draw", "generate image of", "generate a picture of", "generate image", "image banao", "photo banao", "tasveer banao"}

func extractPromptText(raw, _ string) core.Entities {
	lowered := strings.ToLower(raw)
	for _, marker := range promptMarkers {
		if idx := strings.Index(lowered, marker); idx >= 0 {
			p := strings.TrimSpace(raw[idx+len(marker):])
			if p != "" {
				return core.Entities{"prompt": p}
			}
		}
	}
	return nil
}

func containsWord(lowered, word string) bool {
	idx := 0
	for {
		i := strings.Index(lowered[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		startOK := i == 0 || !isAlnum(lowered[i-1])
		end := i + len(word)
		endOK := end == len(lowered) || !isAlnum(lowered[end])
		if startOK && endOK {
			return true
		}
		idx = i + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
