package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/sentinel/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Comments may be processed concurrently; sqlite takes one writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		key_source TEXT NOT NULL,
		provider TEXT NOT NULL,
		verify BOOLEAN NOT NULL,
		items INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		original_feedback TEXT NOT NULL,
		detected_lang TEXT,
		translated_en TEXT,
		sentiment_score REAL,
		sentiment_label TEXT,
		ai_reply_english TEXT,
		ai_reply_native TEXT,
		lingo_test_score REAL,
		lingo_test_result TEXT,
		lingo_test_status TEXT,
		error TEXT,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		final_text TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun inserts or updates the run header.
func (s *Store) SaveRun(ctx context.Context, run internal.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, key_source, provider, verify, items, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.KeySource, run.Provider, run.Verify, run.Items, run.StartedAt, run.FinishedAt)
	return err
}

// SaveResults stores records for runID in one transaction, keyed by position.
func (s *Store) SaveResults(ctx context.Context, runID string, records []internal.ResultRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO results (run_id, idx, original_feedback, detected_lang, translated_en, sentiment_score, sentiment_label, ai_reply_english, ai_reply_native, lingo_test_score, lingo_test_result, lingo_test_status, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			runID, i, r.Original, nullString(r.DetectedLang), nullString(r.TranslatedEN),
			nullFloat(r.SentimentScore), nullString(string(r.SentimentLabel)),
			nullString(r.ReplyEnglish), nullString(r.ReplyNative),
			nullFloat(r.RoundTripScore), nullString(r.RoundTripResult),
			nullString(string(r.RoundTripStatus)), nullString(r.Error)); err != nil {
			return fmt.Errorf("failed to save result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context) ([]internal.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key_source, provider, verify, items, started_at, finished_at FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []internal.Run
	for rows.Next() {
		var r internal.Run
		if err := rows.Scan(&r.ID, &r.KeySource, &r.Provider, &r.Verify, &r.Items, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListResults returns the records of a run in input order.
func (s *Store) ListResults(ctx context.Context, runID string) ([]internal.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT original_feedback, detected_lang, translated_en, sentiment_score, sentiment_label, ai_reply_english, ai_reply_native, lingo_test_score, lingo_test_result, lingo_test_status, error
		 FROM results WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []internal.ResultRecord
	for rows.Next() {
		var (
			r                                     internal.ResultRecord
			lang, en, label, replyEN, replyNative sql.NullString
			rtResult, rtStatus, errMsg            sql.NullString
			score, rtScore                        sql.NullFloat64
		)
		if err := rows.Scan(&r.Original, &lang, &en, &score, &label, &replyEN, &replyNative, &rtScore, &rtResult, &rtStatus, &errMsg); err != nil {
			return nil, err
		}
		r.DetectedLang = lang.String
		r.TranslatedEN = en.String
		r.SentimentScore = floatPtr(score)
		r.SentimentLabel = internal.Label(label.String)
		r.ReplyEnglish = replyEN.String
		r.ReplyNative = replyNative.String
		r.RoundTripScore = floatPtr(rtScore)
		r.RoundTripResult = rtResult.String
		r.RoundTripStatus = internal.Status(rtStatus.String)
		r.Error = errMsg.String
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	var finalText string
	var invalidated bool

	err := s.db.QueryRowContext(ctx,
		`SELECT final_text, invalidated FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		normalizeText(sourceText), sourceLang, targetLang).Scan(&finalText, &invalidated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), normalizeText(sourceText), sourceLang, targetLang)

	return finalText, true, err
}

func (s *Store) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error {
	id := "mem_" + uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, final_text, service_used, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		id, normalizeText(sourceText), sourceLang, targetLang, finalText, serviceUsed, time.Now(), time.Now())
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	SourceLang  string
	TargetLang  string
	FinalText   string
	ServiceUsed string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// DeleteMemory permanently removes a translation memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all translation memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, final_text, service_used, usage_count, invalidated, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.FinalText, &e.ServiceUsed, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunSink persists a finished batch: the run header and its records.
type RunSink struct {
	Store *Store
	Run   internal.Run
}

func (rs RunSink) Push(ctx context.Context, records []internal.ResultRecord) error {
	run := rs.Run
	run.Items = len(records)
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if err := rs.Store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return rs.Store.SaveResults(ctx, run.ID, records)
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
