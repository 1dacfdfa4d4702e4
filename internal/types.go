package internal

import "time"

// DefaultLanguage is the code assumed when detection fails and the language
// every comment is analysed in.
const DefaultLanguage = "en"

type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

type Status string

const (
	StatusSafe    Status = "SAFE"
	StatusReview  Status = "REVIEW"
	StatusUnsafe  Status = "UNSAFE"
	StatusSkipped Status = "Skipped"
)

// Sentiment is the scorer output. Polarity is the raw value used for
// classification; Score is the reported, rounded value.
type Sentiment struct {
	Polarity float64 `json:"-"`
	Score    float64 `json:"score"`
	Label    Label   `json:"label"`
}

// Verification is the round-trip outcome. Score and BackTranslation are only
// set when the check actually ran.
type Verification struct {
	Score           *float64 `json:"score,omitempty"`
	BackTranslation string   `json:"back_translation,omitempty"`
	Status          Status   `json:"status"`
}

// ResultRecord is the per-comment output row.
type ResultRecord struct {
	Original        string   `json:"original_feedback"`
	DetectedLang    string   `json:"detected_lang,omitempty"`
	TranslatedEN    string   `json:"translated_en,omitempty"`
	SentimentScore  *float64 `json:"sentiment_score,omitempty"`
	SentimentLabel  Label    `json:"sentiment_label,omitempty"`
	ReplyEnglish    string   `json:"ai_reply_english,omitempty"`
	ReplyNative     string   `json:"ai_reply_native,omitempty"`
	RoundTripScore  *float64 `json:"lingo_test_score,omitempty"`
	RoundTripResult string   `json:"lingo_test_result,omitempty"`
	RoundTripStatus Status   `json:"lingo_test_status,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Run describes one processed batch.
type Run struct {
	ID         string    `json:"id"`
	KeySource  string    `json:"key_source"`
	Provider   string    `json:"provider"`
	Verify     bool      `json:"verify"`
	Items      int       `json:"items"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
