/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/sentinel/internal/config"
	"github.com/valpere/sentinel/internal/store"
	"github.com/valpere/sentinel/internal/translator"
)

// providerSetup picks the translation service for opts.Provider and the
// credential it authenticates with. The Lingo credential (user key or managed
// key) is only ever handed to the lingo provider. A nil service puts the
// translator in mock mode.
func providerSetup(opts batchOptions) (translator.TranslationService, translator.ServiceConfig, config.Credential, error) {
	cfg := translator.ServiceConfig{
		BaseURL: opts.BaseURL,
		Timeout: opts.Timeout,
	}

	switch opts.Provider {
	case "lingo":
		cred := config.ResolveCredential(opts.Input.LingoAPIKey, opts.Getenv)
		if !cred.Present() {
			return nil, cfg, cred, nil
		}
		cfg.APIKey = cred.Key
		return translator.NewLingoService(cred.Key, opts.BaseURL, opts.Timeout), cfg, cred, nil
	case "google":
		cred := config.Credential{Key: strings.TrimSpace(opts.GoogleAPIKey), Source: config.SourceProvider}
		if !cred.Present() && opts.Credentials == "" {
			return nil, cfg, config.Credential{Source: config.SourceNone}, nil
		}
		cfg.APIKey = cred.Key
		cfg.Credentials = opts.Credentials
		return translator.NewGoogleService(cred.Key), cfg, cred, nil
	case "mock":
		return nil, cfg, config.Credential{Source: config.SourceNone}, nil
	default:
		return nil, cfg, config.Credential{}, fmt.Errorf("unknown provider: %s", opts.Provider)
	}
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
