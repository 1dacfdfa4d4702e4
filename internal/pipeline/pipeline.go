// Package pipeline drives each comment through detection, translation,
// scoring, reply drafting and round-trip verification.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/valpere/sentinel/internal"
	"github.com/valpere/sentinel/internal/reply"
)

// LanguageDetector returns an ISO 639-1 code, falling back to English.
type LanguageDetector interface {
	Detect(text string) string
}

// Translator returns text in the target language, or the input on failure.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}

// SentimentScorer scores English text.
type SentimentScorer interface {
	Score(text string) internal.Sentiment
}

// RoundTripVerifier checks a translated reply by translating it back.
type RoundTripVerifier interface {
	Verify(ctx context.Context, englishDraft, nativeDraft, lang string, enabled bool) internal.Verification
}

// Sink receives the finished batch.
type Sink interface {
	Push(ctx context.Context, records []internal.ResultRecord) error
}

// Stage names the step an item was in when it failed.
type Stage string

const (
	StageDetect       Stage = "detect"
	StageTranslateIn  Stage = "translate_in"
	StageScore        Stage = "score"
	StageCompose      Stage = "compose"
	StageTranslateOut Stage = "translate_out"
	StageVerify       Stage = "verify"
	StageComplete     Stage = "complete"
)

type Config struct {
	// Verify enables the round-trip check.
	Verify bool
	// Concurrency caps how many comments are processed at once. Values
	// below 1 mean sequential processing.
	Concurrency int
}

type Runner struct {
	detector   LanguageDetector
	translator Translator
	scorer     SentimentScorer
	verifier   RoundTripVerifier
	config     Config
}

func New(det LanguageDetector, tr Translator, scorer SentimentScorer, ver RoundTripVerifier, config Config) *Runner {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Runner{
		detector:   det,
		translator: tr,
		scorer:     scorer,
		verifier:   ver,
		config:     config,
	}
}

// Run processes every comment and returns one record per comment in input
// order.
func (r *Runner) Run(ctx context.Context, comments []string) []internal.ResultRecord {
	records := make([]internal.ResultRecord, len(comments))

	var g errgroup.Group
	g.SetLimit(r.config.Concurrency)
	for i, c := range comments {
		g.Go(func() error {
			records[i] = r.Process(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	return records
}

// Process runs a single comment. A panic in any stage ends the item with the
// panic text in rec.Error; fields of earlier stages are kept.
func (r *Runner) Process(ctx context.Context, comment string) (rec internal.ResultRecord) {
	rec.Original = comment
	stage := StageDetect

	defer func() {
		if p := recover(); p != nil {
			rec.Error = fmt.Sprint(p)
			slog.Error("comment processing failed",
				slog.String("stage", string(stage)),
				slog.String("comment", comment),
				slog.String("error", rec.Error))
		}
	}()

	if err := ctx.Err(); err != nil {
		rec.Error = err.Error()
		return rec
	}

	lang := r.detector.Detect(comment)
	rec.DetectedLang = lang

	stage = StageTranslateIn
	english := r.translator.Translate(ctx, comment, lang, internal.DefaultLanguage)
	rec.TranslatedEN = english

	stage = StageScore
	s := r.scorer.Score(english)
	score := s.Score
	rec.SentimentScore = &score
	rec.SentimentLabel = s.Label

	stage = StageCompose
	draft := reply.Compose(s.Label)
	rec.ReplyEnglish = draft

	stage = StageTranslateOut
	native := r.translator.Translate(ctx, draft, internal.DefaultLanguage, lang)
	rec.ReplyNative = native

	stage = StageVerify
	v := r.verifier.Verify(ctx, draft, native, lang, r.config.Verify)
	rec.RoundTripScore = v.Score
	rec.RoundTripResult = v.BackTranslation
	rec.RoundTripStatus = v.Status

	stage = StageComplete
	return rec
}
