// Package verifier estimates whether a localized reply still means what the
// English draft meant, by translating it back and comparing the two.
package verifier

import (
	"context"
	"math"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/valpere/sentinel/internal"
)

// Translator is the part of translator.Translator the verifier needs.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}

// Thresholds are exclusive lower bounds on the similarity ratio.
type Thresholds struct {
	Safe   float64 `mapstructure:"safe_threshold"`
	Review float64 `mapstructure:"review_threshold"`
}

var DefaultThresholds = Thresholds{Safe: 0.8, Review: 0.5}

func (th Thresholds) Classify(ratio float64) internal.Status {
	switch {
	case ratio > th.Safe:
		return internal.StatusSafe
	case ratio > th.Review:
		return internal.StatusReview
	default:
		return internal.StatusUnsafe
	}
}

type Verifier struct {
	tr         Translator
	thresholds Thresholds
}

func New(tr Translator, thresholds Thresholds) *Verifier {
	return &Verifier{tr: tr, thresholds: thresholds}
}

// Verify back-translates nativeDraft from lang to English and scores it
// against englishDraft. It is skipped when disabled or when lang is English.
func (v *Verifier) Verify(ctx context.Context, englishDraft, nativeDraft, lang string, enabled bool) internal.Verification {
	if !enabled || lang == internal.DefaultLanguage {
		return internal.Verification{Status: internal.StatusSkipped}
	}

	back := v.tr.Translate(ctx, nativeDraft, lang, internal.DefaultLanguage)
	ratio := Ratio(englishDraft, back)
	rounded := math.Round(ratio*100) / 100

	return internal.Verification{
		Score:           &rounded,
		BackTranslation: back,
		Status:          v.thresholds.Classify(ratio),
	}
}

// Ratio is the character-level SequenceMatcher ratio 2*M/T. Automatic junk
// detection is off so Ratio(x, x) is always 1.
func Ratio(a, b string) float64 {
	m := difflib.NewMatcherWithJunk(splitRunes(a), splitRunes(b), false, nil)
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
