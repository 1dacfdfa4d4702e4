package translator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/sentinel/internal/logging"
)

// captureWarnings routes the default logger into a buffer at warn level for
// the duration of the test.
func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.NewLogger(&buf, slog.LevelWarn))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

type mockService struct {
	translateFunc func(ctx context.Context, req TranslateRequest) (*ServiceResult, error)
	callCount     atomic.Int32
}

func (m *mockService) Name() string { return "mock-svc" }

func (m *mockService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	m.callCount.Add(1)
	if m.translateFunc != nil {
		return m.translateFunc(ctx, req)
	}
	return &ServiceResult{ServiceName: "mock-svc", TranslatedText: "<" + req.TargetLang + ">" + req.Text}, nil
}

func (m *mockService) IsAvailable(ctx context.Context) error { return nil }

type mapMemory struct {
	entries map[string]string
	saves   int
}

func (m *mapMemory) key(text, src, tgt string) string { return src + "|" + tgt + "|" + text }

func (m *mapMemory) GetCachedTranslation(ctx context.Context, text, src, tgt string) (string, bool, error) {
	v, ok := m.entries[m.key(text, src, tgt)]
	return v, ok, nil
}

func (m *mapMemory) SaveToMemory(ctx context.Context, text, src, tgt, final, svc string) error {
	m.saves++
	m.entries[m.key(text, src, tgt)] = final
	return nil
}

func TestTranslator_MockMode(t *testing.T) {
	tr := New(nil, ServiceConfig{})
	logs := captureWarnings(t)

	if !tr.Mock() {
		t.Fatal("expected mock mode with nil service")
	}

	for _, pair := range [][2]string{{"de", "en"}, {"en", "en"}} {
		got := tr.Translate(context.Background(), "Guten Tag", pair[0], pair[1])
		if !strings.HasPrefix(got, MockPrefix) {
			t.Errorf("Translate(%v) = %q, want %q prefix", pair, got, MockPrefix)
		}
		if !strings.HasSuffix(got, "Guten Tag") {
			t.Errorf("Translate(%v) = %q, want original text kept", pair, got)
		}
	}

	if logs.Len() != 0 {
		t.Errorf("mock translations must not warn per call, got %q", logs.String())
	}
}

func TestTranslator_SameLanguage_NoCall(t *testing.T) {
	svc := &mockService{}
	tr := New(svc, ServiceConfig{})

	for _, text := range []string{"", "Hello", "Привіт, світ"} {
		if got := tr.Translate(context.Background(), text, "uk", "uk"); got != text {
			t.Errorf("Translate(%q, uk, uk) = %q", text, got)
		}
	}

	if n := svc.callCount.Load(); n != 0 {
		t.Errorf("expected no provider calls, got %d", n)
	}
}

func TestTranslator_Success(t *testing.T) {
	svc := &mockService{}
	tr := New(svc, ServiceConfig{})

	got := tr.Translate(context.Background(), "Hello", "en", "fr")
	if got != "<fr>Hello" {
		t.Errorf("unexpected translation %q", got)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected exactly one call, got %d", svc.callCount.Load())
	}
}

func TestTranslator_FailureReturnsOriginal(t *testing.T) {
	svc := &mockService{
		translateFunc: func(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
			return &ServiceResult{ServiceName: "mock-svc", Error: "API returned status 500"}, errors.New("API returned status 500")
		},
	}
	tr := New(svc, ServiceConfig{})
	logs := captureWarnings(t)

	if got := tr.Translate(context.Background(), "Hello", "en", "fr"); got != "Hello" {
		t.Errorf("expected original text on failure, got %q", got)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected no retries, got %d calls", svc.callCount.Load())
	}

	out := logs.String()
	if !strings.Contains(out, "WRN") || !strings.Contains(out, "translation failed") {
		t.Errorf("expected a warning for the failed call, got %q", out)
	}
	if !strings.Contains(out, "API returned status 500") {
		t.Errorf("expected the status detail in the warning, got %q", out)
	}
}

func TestTranslator_TimeoutReturnsOriginal(t *testing.T) {
	svc := &mockService{
		translateFunc: func(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
			<-ctx.Done()
			return &ServiceResult{ServiceName: "mock-svc"}, ctx.Err()
		},
	}
	tr := New(svc, ServiceConfig{}, WithTimeout(20*time.Millisecond))
	logs := captureWarnings(t)

	start := time.Now()
	got := tr.Translate(context.Background(), "Hello", "en", "fr")
	if got != "Hello" {
		t.Errorf("expected original text on timeout, got %q", got)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout was not applied")
	}
	if out := logs.String(); !strings.Contains(out, context.DeadlineExceeded.Error()) {
		t.Errorf("expected the deadline error in the warning, got %q", out)
	}
}

func TestTranslator_Memory(t *testing.T) {
	svc := &mockService{}
	mem := &mapMemory{entries: map[string]string{}}
	tr := New(svc, ServiceConfig{}, WithMemory(mem))

	first := tr.Translate(context.Background(), "Hello", "en", "fr")
	second := tr.Translate(context.Background(), "Hello", "en", "fr")

	if first != second {
		t.Errorf("cached result %q differs from first %q", second, first)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected one provider call, got %d", svc.callCount.Load())
	}
	if mem.saves != 1 {
		t.Errorf("expected one save, got %d", mem.saves)
	}
}

func TestTranslator_Memory_FailureNotCached(t *testing.T) {
	svc := &mockService{
		translateFunc: func(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	mem := &mapMemory{entries: map[string]string{}}
	tr := New(svc, ServiceConfig{}, WithMemory(mem))

	tr.Translate(context.Background(), "Hello", "en", "fr")

	if mem.saves != 0 {
		t.Errorf("failed translations must not be cached, got %d saves", mem.saves)
	}
}

func TestTranslator_ServiceName(t *testing.T) {
	if got := New(nil, ServiceConfig{}).ServiceName(); got != "mock" {
		t.Errorf("expected 'mock', got %q", got)
	}
	if got := New(&mockService{}, ServiceConfig{}).ServiceName(); got != "mock-svc" {
		t.Errorf("expected 'mock-svc', got %q", got)
	}
}
