// Package config turns the batch input mapping and the process environment
// into the options the pipeline runs with.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// ManagedKeyEnv holds the process-wide translation credential.
const ManagedKeyEnv = "MY_SECRET_LINGO_KEY"

// Input keys as they appear in the input mapping.
const (
	KeyComments        = "comments"
	KeyLingoAPIKey     = "lingoApiKey"
	KeyEnableLingoTest = "enableLingoTest"
)

const (
	SourceUser    = "User Key"
	SourceManaged = "Premium Managed Key"
	SourceNone    = "None"

	// SourceProvider marks credentials taken from the translator.* settings
	// of a non-lingo provider.
	SourceProvider = "Provider Config"
)

type Input struct {
	Comments        string
	LingoAPIKey     string
	EnableLingoTest bool
}

// Credential is the translation key selected for a run and where it came from.
type Credential struct {
	Key    string
	Source string
}

func (c Credential) Present() bool {
	return c.Key != ""
}

func newInputViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyEnableLingoTest, true)
	return v
}

// InputFromMap reads the recognised options out of m.
func InputFromMap(m map[string]any) (Input, error) {
	v := newInputViper()
	if err := v.MergeConfigMap(m); err != nil {
		return Input{}, fmt.Errorf("failed to read input: %w", err)
	}
	return inputFromViper(v), nil
}

// LoadInput reads an input file (JSON, YAML or TOML by extension).
func LoadInput(path string) (Input, error) {
	v := newInputViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Input{}, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	return inputFromViper(v), nil
}

func inputFromViper(v *viper.Viper) Input {
	in := Input{
		LingoAPIKey:     strings.TrimSpace(v.GetString(KeyLingoAPIKey)),
		EnableLingoTest: v.GetBool(KeyEnableLingoTest),
	}

	switch raw := v.Get(KeyComments).(type) {
	case []any, []string:
		in.Comments = strings.Join(v.GetStringSlice(KeyComments), "\n")
	case nil:
	default:
		in.Comments = fmt.Sprint(raw)
	}
	return in
}

// ParseComments splits raw on commas and newlines, trims every entry and
// drops empty ones.
func ParseComments(raw string) []string {
	parts := strings.Split(strings.ReplaceAll(raw, "\n", ","), ",")
	comments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			comments = append(comments, p)
		}
	}
	return comments
}

// ResolveCredential prefers the user's key over the managed one.
func ResolveCredential(userKey string, getenv func(string) string) Credential {
	if userKey = strings.TrimSpace(userKey); userKey != "" {
		return Credential{Key: userKey, Source: SourceUser}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if key := strings.TrimSpace(getenv(ManagedKeyEnv)); key != "" {
		return Credential{Key: key, Source: SourceManaged}
	}
	return Credential{Source: SourceNone}
}

// LoadEnv loads dotenv files without overriding variables already set.
// Missing files are not an error.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := gotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Debug("no .env file found, using OS environment", slog.String("file", f))
				continue
			}
			slog.Warn("failed to load .env file", slog.String("file", f), slog.String("error", err.Error()))
		}
	}
}
