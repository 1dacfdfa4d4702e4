package translator

import (
	"context"
	"time"
)

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName    string        `json:"service_name"`
	TranslatedText string        `json:"translated_text"`
	Latency        time.Duration `json:"latency"`
	Error          string        `json:"error,omitempty"`
}

// TranslationService is the provider contract. Implementations report every
// failure through the returned error; the Translator decides how to degrade.
type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
}

// Memory is a translation cache consulted before the provider is called.
type Memory interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error
}
