package sentiment

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/valpere/sentinel/internal"
	"github.com/valpere/sentinel/internal/markdown"
)

// Polarity boundaries; both are exclusive.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// Scorer computes VADER compound polarity for English text.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the compound score in [-1, 1].
func (s *Scorer) Polarity(text string) float64 {
	plain := strings.TrimSpace(text)
	if markdown.HasMarkup(plain) {
		plain = markdown.ToPlainText(plain)
	}
	if plain == "" {
		return 0
	}
	return s.analyzer.PolarityScores(plain).Compound
}

func (s *Scorer) Score(text string) internal.Sentiment {
	polarity := s.Polarity(text)
	return internal.Sentiment{
		Polarity: polarity,
		Score:    Round(polarity),
		Label:    Classify(polarity),
	}
}

func Classify(polarity float64) internal.Label {
	switch {
	case polarity > PositiveThreshold:
		return internal.Positive
	case polarity < NegativeThreshold:
		return internal.Negative
	default:
		return internal.Neutral
	}
}

// Round rounds to two decimal places for reporting.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
