package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/sentinel/internal"
	"github.com/valpere/sentinel/internal/config"
	"github.com/valpere/sentinel/internal/detector"
	"github.com/valpere/sentinel/internal/logging"
	"github.com/valpere/sentinel/internal/store"
	"github.com/valpere/sentinel/internal/translator"
	"github.com/valpere/sentinel/internal/verifier"
)

// Building a lingua detector over every language is slow; share one.
var sharedDetector = sync.OnceValue(detector.New)

func noEnv(string) string { return "" }

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.NewLogger(&buf, slog.LevelWarn))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func testBatchOptions(t *testing.T, comments string) batchOptions {
	t.Helper()
	dir := t.TempDir()
	return batchOptions{
		Input:       config.Input{Comments: comments, EnableLingoTest: true},
		Provider:    "lingo",
		Timeout:     time.Second,
		Concurrency: 2,
		Thresholds:  verifier.DefaultThresholds,
		OutputFile:  filepath.Join(dir, "results.json"),
		DBPath:      filepath.Join(dir, "sentinel.db"),
		UseCache:    true,
		Detector:    sharedDetector(),
		Getenv:      noEnv,
	}
}

func TestRunBatch_MockMode(t *testing.T) {
	opts := testBatchOptions(t, "Great service!,Terrible and never again")
	logs := captureLogs(t)

	records, err := runBatch(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, logs.String(), "mock mode")

	assert.Equal(t, "Great service!", records[0].Original)
	assert.Equal(t, "Terrible and never again", records[1].Original)
	for _, r := range records {
		assert.Empty(t, r.Error)
		assert.True(t, strings.HasPrefix(r.ReplyNative, translator.MockPrefix), "reply %q", r.ReplyNative)
		assert.NotNil(t, r.SentimentScore)
	}

	data, err := os.ReadFile(opts.OutputFile)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Len(t, rows, 2)

	db, err := store.New(opts.DBPath)
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, config.SourceNone, runs[0].KeySource)
	assert.Equal(t, "mock", runs[0].Provider)
	assert.Equal(t, 2, runs[0].Items)

	stats, err := db.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEntries, "mock translations must not be cached")
}

func TestRunBatch_ManagedKeySource(t *testing.T) {
	var mu sync.Mutex
	var auth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"translation": body["content"]})
	}))
	defer server.Close()

	opts := testBatchOptions(t, "Das Essen war kalt und der Kellner war unfreundlich")
	opts.BaseURL = server.URL
	opts.Getenv = func(k string) string {
		if k == config.ManagedKeyEnv {
			return "managed"
		}
		return ""
	}
	logs := captureLogs(t)

	records, err := runBatch(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotContains(t, logs.String(), "mock mode")

	mu.Lock()
	require.NotEmpty(t, auth)
	for _, h := range auth {
		assert.Equal(t, "Bearer managed", h)
	}
	mu.Unlock()

	db, err := store.New(opts.DBPath)
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, config.SourceManaged, runs[0].KeySource)
	assert.Equal(t, "lingo", runs[0].Provider)
}

func TestRunBatch_NoComments(t *testing.T) {
	opts := testBatchOptions(t, "")

	records, err := runBatch(context.Background(), opts)
	require.NoError(t, err)
	assert.Nil(t, records)

	_, err = os.Stat(opts.OutputFile)
	assert.True(t, os.IsNotExist(err), "no output expected")
	_, err = os.Stat(opts.DBPath)
	assert.True(t, os.IsNotExist(err), "store must not be opened")
}

func TestRunBatch_OnlySeparators(t *testing.T) {
	opts := testBatchOptions(t, " , ,\n,")
	opts.DBPath = ""

	records, err := runBatch(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, records)

	data, err := os.ReadFile(opts.OutputFile)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestRunBatch_VerifyDisabled(t *testing.T) {
	opts := testBatchOptions(t, "Das Essen war kalt und der Kellner war unfreundlich")
	opts.Input.EnableLingoTest = false
	opts.DBPath = ""

	records, err := runBatch(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, internal.StatusSkipped, records[0].RoundTripStatus)
	assert.Nil(t, records[0].RoundTripScore)
}

func TestRunBatch_UnknownProvider(t *testing.T) {
	opts := testBatchOptions(t, "hello")
	opts.Provider = "carrier-pigeon"

	_, err := runBatch(context.Background(), opts)
	assert.Error(t, err)
}

func TestProviderSetup(t *testing.T) {
	managedEnv := func(k string) string {
		if k == config.ManagedKeyEnv {
			return "lingo-managed"
		}
		return ""
	}

	tests := []struct {
		name       string
		provider   string
		lingoKey   string
		googleKey  string
		creds      string
		getenv     func(string) string
		wantName   string
		wantAPIKey string
		wantCreds  string
		wantSource string
		wantErr    bool
	}{
		{name: "lingo user key", provider: "lingo", lingoKey: "user", getenv: managedEnv, wantName: "lingo", wantAPIKey: "user", wantSource: config.SourceUser},
		{name: "lingo managed key", provider: "lingo", getenv: managedEnv, wantName: "lingo", wantAPIKey: "lingo-managed", wantSource: config.SourceManaged},
		{name: "lingo without key", provider: "lingo", getenv: noEnv, wantSource: config.SourceNone},
		{name: "google key", provider: "google", googleKey: "g-key", getenv: noEnv, wantName: "google", wantAPIKey: "g-key", wantSource: config.SourceProvider},
		{name: "google credentials ignore lingo keys", provider: "google", lingoKey: "user", creds: "/creds.json", getenv: managedEnv, wantName: "google", wantCreds: "/creds.json", wantSource: config.SourceProvider},
		{name: "google without credentials", provider: "google", lingoKey: "user", getenv: managedEnv, wantSource: config.SourceNone},
		{name: "mock", provider: "mock", lingoKey: "user", getenv: managedEnv, wantSource: config.SourceNone},
		{name: "unknown", provider: "nope", getenv: noEnv, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, cfg, cred, err := providerSetup(batchOptions{
				Input:        config.Input{LingoAPIKey: tt.lingoKey},
				Provider:     tt.provider,
				Credentials:  tt.creds,
				GoogleAPIKey: tt.googleKey,
				Timeout:      time.Second,
				Getenv:       tt.getenv,
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, cred.Source)
			assert.Equal(t, tt.wantAPIKey, cfg.APIKey)
			assert.Equal(t, tt.wantCreds, cfg.Credentials)

			if tt.wantName == "" {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantName, svc.Name())
		})
	}
}
