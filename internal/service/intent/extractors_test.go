package intent

import (
	"testing"
)

func TestExtractCity(t *testing.T) {
	tests := []struct {
		raw  string
		lang string
		want string
	}{
		{"weather in Mumbai", "en", "Mumbai"},
		{"weather in navi mumbai today", "en", "Navi Mumbai"},
		{"aqi delhi", "en", "Delhi"},
		{"weather in Xanadu", "en", "Xanadu"}, // unknown city after "in"
		{"indore mein barish", "hi", "Indore"},
		{"weather in the morning", "en", ""}, // stopword is not a city
		{"how hot is it", "en", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := extractCity(tt.raw, tt.lang)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no city, got %v", got)
				}
				return
			}
			if got["city"] != tt.want {
				t.Errorf("city = %v, want %q", got["city"], tt.want)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"weather aaj", "today"},
		{"kal ka mausam", "tomorrow"},
		{"parso chalenge", "day_after"},
		{"train on 25/12", "25/12"},
		{"flight on 3rd Mar", "3rd mar"},
		{"no date here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := extractDate(tt.raw, "en")
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no date, got %v", got)
				}
				return
			}
			if got["date"] != tt.want {
				t.Errorf("date = %v, want %q", got["date"], tt.want)
			}
		})
	}
}

func TestExtractSourceDestination(t *testing.T) {
	tests := []struct {
		raw      string
		lang     string
		wantSrc  string
		wantDest string
	}{
		{"trains from patna to delhi", "en", "Patna", "Delhi"},
		{"mumbai to pune", "en", "Mumbai", "Pune"},
		{"patna se delhi jana hai", "hi", "Patna", "Delhi"},
		{"just some text", "en", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := extractSourceDestination(tt.raw, tt.lang)
			if tt.wantSrc == "" {
				if got != nil {
					t.Fatalf("expected no route, got %v", got)
				}
				return
			}
			if got["source_city"] != tt.wantSrc || got["destination_city"] != tt.wantDest {
				t.Errorf("route = %v, want %s -> %s", got, tt.wantSrc, tt.wantDest)
			}
		})
	}
}

func TestExtractIdentifiers(t *testing.T) {
	if got := extractPNR("pnr 4528176390", ""); got["pnr_number"] != "4528176390" {
		t.Errorf("pnr = %v", got)
	}
	if got := extractTrainNumber("train 12301 status", ""); got["train_number"] != "12301" {
		t.Errorf("train_number = %v", got)
	}
	if got := extractIFSC("ifsc sbin0001234", ""); got["ifsc_code"] != "SBIN0001234" {
		t.Errorf("ifsc = %v", got)
	}
	if got := extractPAN("status of ABCDE1234F", ""); got["pan_number"] != "ABCDE1234F" {
		t.Errorf("pan = %v", got)
	}
	if got := extractPinCode("pin code 110001", ""); got["pin_code"] != "110001" {
		t.Errorf("pin_code = %v", got)
	}
	if got := extractFlightNumber("flight AI 202 status", ""); got["flight_number"] != "AI202" {
		t.Errorf("flight_number = %v", got)
	}
}

func TestExtractSign(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"leo horoscope", "leo"},
		{"singh rashi ka rashifal", "leo"},
		{"mesh rashifal", "aries"},
		{"horoscope please", ""},
	}
	for _, tt := range tests {
		got := extractSign(tt.raw, "")
		if tt.want == "" {
			if got != nil {
				t.Errorf("%q: expected no sign, got %v", tt.raw, got)
			}
			continue
		}
		if got["sign"] != tt.want {
			t.Errorf("%q: sign = %v, want %q", tt.raw, got["sign"], tt.want)
		}
	}
}

func TestExtractAmountCurrency(t *testing.T) {
	got := extractAmountCurrency("convert 100 usd to inr", "")
	if got["amount"] != 100.0 {
		t.Errorf("amount = %v", got["amount"])
	}
	if got["currency_from"] != "USD" || got["currency_to"] != "INR" {
		t.Errorf("currencies = %v", got)
	}

	if got := extractAmountCurrency("exchange rate batao", ""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestExtractSearchQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"find biryani near me", "biryani"},
		{"search for stationery shop", "stationery shop"},
		{"dhaba dhundo", "dhaba"},
		{"find ", ""},
	}
	for _, tt := range tests {
		got := extractSearchQuery(tt.raw, "en")
		if tt.want == "" {
			if got != nil {
				t.Errorf("%q: expected nil, got %v", tt.raw, got)
			}
			continue
		}
		if got["search_query"] != tt.want {
			t.Errorf("%q: search_query = %v, want %q", tt.raw, got["search_query"], tt.want)
		}
	}
}

func TestExtractTermAndTargetLanguage(t *testing.T) {
	if got := extractTerm("meaning of serendipity", ""); got["term"] != "serendipity" {
		t.Errorf("term = %v", got)
	}
	if got := extractTerm("khushi ka matlab batao", ""); got["term"] != "khushi" {
		t.Errorf("term = %v", got)
	}
	if got := extractTargetLanguage("translate happy to hindi", ""); got["target_language"] != "hindi" {
		t.Errorf("target_language = %v", got)
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		s, w string
		want bool
	}{
		{"leo horoscope", "leo", true},
		{"chameleon facts", "leo", false},
		{"atm near me", "atm", true},
		{"batman movie", "atm", false},
		{"sl class", "sl", true},
	}
	for _, tt := range tests {
		if got := containsWord(tt.s, tt.w); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.s, tt.w, got, tt.want)
		}
	}
}
