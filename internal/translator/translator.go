package translator

import (
	"context"
	"log/slog"
	"time"
)

// MockPrefix tags placeholder output produced when no provider is configured.
const MockPrefix = "[MOCK MODE] "

// Translator wraps a TranslationService with the fallback policy used by the
// pipeline: it never fails, it returns the input text instead.
// A nil service puts it in mock mode.
type Translator struct {
	svc     TranslationService
	cfg     ServiceConfig
	memory  Memory
	timeout time.Duration
}

type Option func(*Translator)

// WithMemory enables the translation memory cache.
func WithMemory(m Memory) Option {
	return func(t *Translator) { t.memory = m }
}

// WithTimeout bounds every provider call. Defaults to DefaultLingoTimeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Translator) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func New(svc TranslationService, cfg ServiceConfig, opts ...Option) *Translator {
	t := &Translator{
		svc:     svc,
		cfg:     cfg,
		timeout: DefaultLingoTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mock reports whether the translator runs without a provider.
func (t *Translator) Mock() bool {
	return t.svc == nil
}

// ServiceName returns the provider name, or "mock".
func (t *Translator) ServiceName() string {
	if t.svc == nil {
		return "mock"
	}
	return t.svc.Name()
}

func (t *Translator) Translate(ctx context.Context, text, source, target string) string {
	if t.svc == nil {
		return MockPrefix + text
	}
	if source == target {
		return text
	}

	if t.memory != nil {
		cached, found, err := t.memory.GetCachedTranslation(ctx, text, source, target)
		if err != nil {
			slog.Warn("translation memory lookup failed", slog.String("error", err.Error()))
		} else if found {
			return cached
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.svc.Translate(callCtx, t.cfg, TranslateRequest{
		Text:       text,
		SourceLang: source,
		TargetLang: target,
	})
	if err != nil {
		detail := err.Error()
		if res != nil && res.Error != "" {
			detail = res.Error
		}
		slog.Warn("translation failed, keeping original text",
			slog.String("service", t.svc.Name()),
			slog.String("source", source),
			slog.String("target", target),
			slog.String("error", detail))
		return text
	}

	if t.memory != nil {
		if err := t.memory.SaveToMemory(ctx, text, source, target, res.TranslatedText, res.ServiceName); err != nil {
			slog.Warn("translation memory save failed", slog.String("error", err.Error()))
		}
	}

	return res.TranslatedText
}
