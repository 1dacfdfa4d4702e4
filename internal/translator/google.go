package translator

import (
	"context"
	"fmt"
	"html"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService talks to Cloud Translation v2. It authenticates with an API
// key when one is set, otherwise with a credentials file.
type GoogleService struct {
	apiKey string
}

func NewGoogleService(apiKey string) *GoogleService {
	return &GoogleService{apiKey: apiKey}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetLangTag, err := language.Parse(req.TargetLang)
	if err != nil {
		result.Error = fmt.Sprintf("invalid target language: %v", err)
		return result, fmt.Errorf("invalid target language: %w", err)
	}

	opts := []option.ClientOption{}
	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	switch {
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	case cfg.Credentials != "":
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create client: %v", err)
		return result, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	translateOpts := &translate.Options{Format: translate.Text}
	if req.SourceLang != "" {
		if sourceLangTag, err := language.Parse(req.SourceLang); err == nil {
			translateOpts.Source = sourceLangTag
		}
	}

	translations, err := client.Translate(ctx, []string{req.Text}, targetLangTag, translateOpts)
	if err != nil {
		result.Error = fmt.Sprintf("translation failed: %v", err)
		return result, fmt.Errorf("translation failed: %w", err)
	}

	if len(translations) == 0 {
		result.Error = "no translation returned"
		return result, fmt.Errorf("no translation returned")
	}

	result.TranslatedText = html.UnescapeString(translations[0].Text)
	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}
