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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/sentinel/internal/config"
	"github.com/valpere/sentinel/internal/logging"
	"github.com/valpere/sentinel/internal/output"
	"github.com/valpere/sentinel/internal/translator"
	"github.com/valpere/sentinel/internal/verifier"
)

var (
	ui *output.UI

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Multilingual comment triage with verified replies",
	Long: `Sentinel reads a batch of customer comments, detects each comment's language,
scores its sentiment in English, drafts a reply, translates the reply back to the
commenter's language and checks the translation by round-tripping it.

Use "sentinel run --help" for batch options.`,
	SilenceUsage: true,
}

func Execute(version string) {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./sentinel.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().String("db", "./data/sentinel.db", "Database path for results and translation memory")
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	// .env first so the managed key and SENTINEL_* overrides are visible to viper.
	config.LoadEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("sentinel")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SENTINEL")
	viper.AutomaticEnv()

	viper.SetDefault("provider", "lingo")
	viper.SetDefault("translator.base_url", "")
	viper.SetDefault("translator.timeout", translator.DefaultLingoTimeout)
	viper.SetDefault("translator.credentials", "")
	viper.SetDefault("translator.api_key", "")
	viper.SetDefault("pipeline.concurrency", 1)
	viper.SetDefault("verify.safe_threshold", verifier.DefaultThresholds.Safe)
	viper.SetDefault("verify.review_threshold", verifier.DefaultThresholds.Review)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error: failed to read config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func initDeps() {
	level := viper.GetString("log.level")
	if verbose {
		level = "debug"
	}
	logging.InitLogger(level)

	ui = output.New()
}

func translatorTimeout() time.Duration {
	return viper.GetDuration("translator.timeout")
}
