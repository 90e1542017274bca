package intent

// Exported lookup helpers for other classifiers that need to recognize a
// bare entity fragment (a city name, a date) without running the cascade.

// FindCity resolves a city mention in text, language-aware.
func FindCity(text, lang string) (string, bool) {
	entities := extractCity(text, lang)
	if entities == nil {
		return "", false
	}
	city, _ := entities["city"].(string)
	return city, city != ""
}

// FindDate resolves a date fragment (relative words included) in text.
func FindDate(text string) (string, bool) {
	entities := extractDate(text, "")
	if entities == nil {
		return "", false
	}
	date, _ := entities["date"].(string)
	return date, date != ""
}
