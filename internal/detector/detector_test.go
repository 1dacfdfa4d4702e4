package detector

import (
	"testing"
)

var shared = New()

func TestDetector_DetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:   "whitespace only",
			text:   "   ",
			wantOK: false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantLang: "German",
			wantOK:   true,
		},
		{
			name:     "spanish text",
			text:     "Hola, esto es una prueba en español.",
			wantLang: "Spanish",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := shared.DetectLanguage(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectLanguage(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang.String() != tt.wantLang {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{"empty text", "", "", false},
		{"english text", "Hello, this is a test in English.", "en", true},
		{"ukrainian text", "Привіт, це тест українською мовою.", "uk", true},
		{"french text", "Bonjour, ceci est un test en français.", "fr", true},
		{"russian text", "Это тест на русском языке.", "ru", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := shared.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_Detect_DefaultsToEnglish(t *testing.T) {
	for _, text := range []string{"", "   ", "1234 5678"} {
		if got := shared.Detect(text); got != "en" {
			t.Errorf("Detect(%q) = %q, want en", text, got)
		}
	}
}

func TestDetector_Detect_Known(t *testing.T) {
	if got := shared.Detect("Hallo, das ist ein Test auf Deutsch."); got != "de" {
		t.Errorf("Detect = %q, want de", got)
	}
}

func TestDetector_Detect_RecoversPanic(t *testing.T) {
	var d Detector // nil lingua detector
	if got := d.Detect("Bonjour tout le monde"); got != "en" {
		t.Errorf("Detect on broken detector = %q, want en", got)
	}
}
