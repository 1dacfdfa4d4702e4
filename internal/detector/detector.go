package detector

import (
	"log/slog"
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/sentinel/internal"
)

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) DetectLanguage(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lowercase ISO 639-1 code of text.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.DetectLanguage(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Detect never fails: anything it cannot identify is reported as
// internal.DefaultLanguage.
func (d *Detector) Detect(text string) (code string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("language detection panicked", slog.Any("panic", r))
			code = internal.DefaultLanguage
		}
	}()

	code, ok := d.DetectISO(text)
	if !ok || code == "" {
		return internal.DefaultLanguage
	}
	return code
}
