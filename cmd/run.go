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
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/sentinel/internal"
	"github.com/valpere/sentinel/internal/config"
	"github.com/valpere/sentinel/internal/detector"
	"github.com/valpere/sentinel/internal/output"
	"github.com/valpere/sentinel/internal/pipeline"
	"github.com/valpere/sentinel/internal/sentiment"
	"github.com/valpere/sentinel/internal/store"
	"github.com/valpere/sentinel/internal/translator"
	"github.com/valpere/sentinel/internal/verifier"
)

var (
	runInputFile   string
	runComments    string
	runAPIKey      string
	runVerify      bool
	runProvider    string
	runOutputFile  string
	runNoStore     bool
	runNoCache     bool
	runConcurrency int
	runQuiet       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a batch of comments",
	Long: `Process a batch of customer comments: detect language, translate to English,
score sentiment, draft a reply, translate it back and verify the translation
by round-tripping it.

Comments come from an input file (JSON or YAML with "comments", "lingoApiKey"
and "enableLingoTest" keys) and/or flags. Flags override the file.

Without an API key the run proceeds in mock mode.`,
	Example: `  sentinel run -c "Great service!,Das Essen war kalt"
  sentinel run -i input.json -o ./data/results.json
  sentinel run -i input.yaml --enable-lingo-test=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := config.Input{EnableLingoTest: true}
		if runInputFile != "" {
			var err error
			in, err = config.LoadInput(runInputFile)
			if err != nil {
				return err
			}
		}

		flags := cmd.Flags()
		if flags.Changed("comments") {
			in.Comments = runComments
		}
		if flags.Changed("lingo-api-key") {
			in.LingoAPIKey = runAPIKey
		}
		if flags.Changed("enable-lingo-test") {
			in.EnableLingoTest = runVerify
		}

		provider := viper.GetString("provider")
		if flags.Changed("provider") {
			provider = runProvider
		}
		concurrency := viper.GetInt("pipeline.concurrency")
		if flags.Changed("concurrency") {
			concurrency = runConcurrency
		}

		thresholds := verifier.DefaultThresholds
		if err := viper.UnmarshalKey("verify", &thresholds); err != nil {
			return fmt.Errorf("invalid verify config: %w", err)
		}

		opts := batchOptions{
			Input:        in,
			Provider:     provider,
			BaseURL:      viper.GetString("translator.base_url"),
			Credentials:  viper.GetString("translator.credentials"),
			GoogleAPIKey: viper.GetString("translator.api_key"),
			Timeout:      translatorTimeout(),
			Concurrency:  concurrency,
			Thresholds:   thresholds,
			OutputFile:   runOutputFile,
			Getenv:       os.Getenv,
		}
		if !runNoStore {
			opts.DBPath = viper.GetString("db_path")
			opts.UseCache = !runNoCache
		}
		if !runQuiet {
			opts.UI = ui
		}

		_, err := runBatch(cmd.Context(), opts)
		return err
	},
}

// batchOptions carries everything one batch needs, already resolved from
// flags, the input file and viper.
type batchOptions struct {
	Input       config.Input
	Provider    string
	BaseURL     string
	Credentials string
	Timeout     time.Duration
	Concurrency int
	Thresholds  verifier.Thresholds

	// GoogleAPIKey authenticates the google provider. Lingo keys are never
	// used for it.
	GoogleAPIKey string

	// OutputFile receives the JSON dataset. Empty disables it.
	OutputFile string
	// DBPath enables the results store. Empty disables it.
	DBPath string
	// UseCache enables translation memory. Needs DBPath.
	UseCache bool
	// UI prints the summary table. Nil disables it.
	UI *output.UI
	// Detector overrides the lingua detector built for the batch.
	Detector pipeline.LanguageDetector

	Getenv func(string) string
}

// runBatch processes one batch and pushes it to every configured sink.
// A missing comments field is logged and produces no output.
func runBatch(ctx context.Context, opts batchOptions) ([]internal.ResultRecord, error) {
	if opts.Input.Comments == "" {
		slog.Error("no comments provided")
		return nil, nil
	}

	svc, cfg, cred, err := providerSetup(opts)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		slog.Warn("no translation API key found, running in mock mode",
			slog.String("provider", opts.Provider))
	}

	var db *store.Store
	if opts.DBPath != "" {
		db, err = openStore(opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
	}

	trOpts := []translator.Option{translator.WithTimeout(opts.Timeout)}
	if db != nil && opts.UseCache {
		trOpts = append(trOpts, translator.WithMemory(db))
	}
	tr := translator.New(svc, cfg, trOpts...)

	det := opts.Detector
	if det == nil {
		det = detector.New()
	}

	comments := config.ParseComments(opts.Input.Comments)

	run := internal.Run{
		ID:        uuid.New().String(),
		KeySource: cred.Source,
		Provider:  tr.ServiceName(),
		Verify:    opts.Input.EnableLingoTest,
		StartedAt: time.Now(),
	}

	slog.Info("starting batch",
		slog.String("run_id", run.ID),
		slog.String("key_source", cred.Source),
		slog.String("provider", run.Provider),
		slog.Int("comments", len(comments)),
		slog.Bool("verify", run.Verify),
	)

	runner := pipeline.New(
		det,
		tr,
		sentiment.NewScorer(),
		verifier.New(tr, opts.Thresholds),
		pipeline.Config{Verify: opts.Input.EnableLingoTest, Concurrency: opts.Concurrency},
	)
	records := runner.Run(ctx, comments)
	run.FinishedAt = time.Now()

	var sinks []pipeline.Sink
	if opts.OutputFile != "" {
		sinks = append(sinks, output.JSONSink{Path: opts.OutputFile})
	}
	if db != nil {
		sinks = append(sinks, store.RunSink{Store: db, Run: run})
	}
	if opts.UI != nil && len(records) > 0 {
		sinks = append(sinks, output.TableSink{UI: opts.UI})
	}

	if err := pipeline.PushAll(ctx, records, sinks...); err != nil {
		return records, fmt.Errorf("failed to write results: %w", err)
	}

	slog.Info(fmt.Sprintf("Processed %d items", len(records)),
		slog.String("run_id", run.ID),
		slog.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
	)
	return records, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runInputFile, "input", "i", "", "Input file (JSON or YAML)")
	runCmd.Flags().StringVarP(&runComments, "comments", "c", "", "Comments separated by commas or newlines")
	runCmd.Flags().StringVar(&runAPIKey, "lingo-api-key", "", "Translation API key (overrides "+config.ManagedKeyEnv+")")
	runCmd.Flags().BoolVar(&runVerify, "enable-lingo-test", true, "Verify reply translations by round-tripping them")
	runCmd.Flags().StringVarP(&runProvider, "provider", "p", "lingo", "Translation provider: lingo, google, mock")
	runCmd.Flags().StringVarP(&runOutputFile, "output", "o", "./data/results.json", "JSON output file (empty to disable)")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "Do not persist results or use translation memory")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "Skip translation memory")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 1, "Comments processed in parallel")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Do not print the summary table")
}
