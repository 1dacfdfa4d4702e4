package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultLingoURL     = "https://api.lingo.dev/v1/translate"
	DefaultLingoTimeout = 10 * time.Second
)

// ErrMissingTranslation is returned when a 200 response carries no
// translation field.
var ErrMissingTranslation = errors.New("response has no translation field")

type LingoService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewLingoService(apiKey, baseURL string, timeout time.Duration) *LingoService {
	if baseURL == "" {
		baseURL = DefaultLingoURL
	}
	if timeout <= 0 {
		timeout = DefaultLingoTimeout
	}
	return &LingoService{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *LingoService) Name() string {
	return "lingo"
}

func (s *LingoService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		result.Error = "Lingo API key required"
		return result, fmt.Errorf("Lingo API key required")
	}

	payload := map[string]string{
		"source":  req.SourceLang,
		"target":  req.TargetLang,
		"content": req.Text,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		result.Error = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(body))
		return result, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var lingoResp struct {
		Translation *string `json:"translation"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&lingoResp); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, err
	}

	if lingoResp.Translation == nil {
		result.Error = ErrMissingTranslation.Error()
		return result, ErrMissingTranslation
	}

	result.TranslatedText = *lingoResp.Translation
	return result, nil
}

func (s *LingoService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Lingo API key not configured")
	}
	return nil
}
