package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/botirk38/embedcache/config"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "embedcache",
	Short: "Embedding cache and retrieval-grounded text polishing",
	Long: `embedcache keeps text embeddings in a bounded in-memory cache and uses the
most similar cached texts as context when polishing new text with an LLM.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config", "c",
		"",
		"config file | example: --config=./configs/embedcache.yaml",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"override log level | example: --log-level=debug",
	)
}

// loadConfig reads .env, then the config file and environment, then flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	cfg = loaded

	logrus.SetLevel(cfg.Level())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
