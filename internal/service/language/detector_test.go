package language

import (
	"context"
	"testing"
)

type fakeRemoteDetector struct {
	code   string
	called bool
}

func (f *fakeRemoteDetector) Detect(_ context.Context, _ string) string {
	f.called = true
	return f.code
}

func TestDetect_Scripts(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		text string
		want string
	}{
		{"दिल्ली में मौसम कैसा है", "hi"},
		{"আজকের আবহাওয়া কেমন", "bn"},
		{"இன்று வானிலை எப்படி", "ta"},
		{"వాతావరణం ఎలా ఉంది", "te"},
		{"ਅੱਜ ਮੌਸਮ ਕਿਵੇਂ ਹੈ", "pa"},
		{"what is the weather today", "en"},
	}
	for _, tt := range tests {
		if got := d.Detect(context.Background(), tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetect_Hinglish(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		text string
		want string
	}{
		{"mausam kaisa hai batao", "hi"}, // two romanized hits
		{"train kaha", "hi"},             // one hit, short message
		{"weather in mumbai please", "en"},
		{"show me आज का मौसम बताओ", "hi"}, // script majority despite latin prefix
	}
	for _, tt := range tests {
		if got := d.Detect(context.Background(), tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetect_EmptyAndDigits(t *testing.T) {
	d := NewDetector(nil)

	if got := d.Detect(context.Background(), "   "); got != English {
		t.Errorf("empty = %q, want en", got)
	}
	if got := d.Detect(context.Background(), "4528176390"); got != English {
		t.Errorf("digits = %q, want en", got)
	}
}

func TestDetect_RemoteEscalation(t *testing.T) {
	remote := &fakeRemoteDetector{code: "hi-IN"}
	d := NewDetector(remote)

	// One romanized hit in a longer message is ambiguous and escalates.
	got := d.Detect(context.Background(), "please check the train wala thing for tomorrow")
	if !remote.called {
		t.Fatal("remote detector was not consulted")
	}
	if got != "hi" {
		t.Errorf("got %q, want normalized hi", got)
	}
}

func TestDetect_RemoteGarbageFallsBack(t *testing.T) {
	remote := &fakeRemoteDetector{code: "???"}
	d := NewDetector(remote)

	got := d.Detect(context.Background(), "please check the train wala thing for tomorrow")
	if got != English {
		t.Errorf("got %q, want en when remote returns garbage", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hi", "hi"},
		{"hi-IN", "hi"},
		{"en_US", "en"},
		{"Hindi", ""},
		{"", ""},
		{"!!", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
