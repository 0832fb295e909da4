package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minjae-ko/playkit/auth"
	"github.com/minjae-ko/playkit/client"
	"github.com/minjae-ko/playkit/i18n"
	"github.com/minjae-ko/playkit/storage"
)

var cfg = viper.New()

var rootCmd = &cobra.Command{
	Use:   "playkit",
	Short: "Playkit CLI - bilingual demo app client and practice backend",
	Long: `Playkit drives the demo app's backend and its client-side engine from
the terminal: run the practice server, sign in, and work with todos,
calendar events and posts against any compatible backend.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (PLAYKIT_*)
3. Configuration files (./playkit.yaml, ~/.playkit/playkit.yaml)

Examples:
  # Run the practice backend locally
  playkit serve --addr :8800

  # Sign in and manage todos
  playkit login mia@example.com
  playkit todo add "Buy milk" --priority high
  playkit todo list`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		return initLogging(cfg.GetString("log-level"), cfg.GetBool("verbose"))
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("base-url", "http://localhost:8800", "Backend base URL")
	flags.String("data-dir", defaultDataDir(), "Directory for local state (tokens, settings)")
	flags.String("language", "", "UI language: ko|en (defaults to the saved setting)")
	flags.String("log-level", "warn", "Log level: debug|info|warn|error")
	flags.BoolP("verbose", "v", false, "Also log to stderr")

	if configFile := os.Getenv("PLAYKIT_CONFIG"); configFile != "" {
		cfg.SetConfigFile(configFile)
	} else {
		cfg.SetConfigName("playkit")
		cfg.SetConfigType("yaml")
		cfg.AddConfigPath(".")
		cfg.AddConfigPath("$HOME/.playkit")
	}
	cfg.AutomaticEnv()
	cfg.SetEnvPrefix("PLAYKIT")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	_ = cfg.ReadInConfig()
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "playkit")
	}
	return filepath.Join(homeDir, ".playkit")
}

// app bundles the pieces every client-facing command needs.
type app struct {
	Storage *storage.Store
	API     *client.Client
	Session *auth.Session
	Locale  *i18n.Bundle
}

// newApp opens local storage under the data dir, builds the REST client over
// it and restores the persisted session if one exists.
func newApp(cmd *cobra.Command) (*app, error) {
	dataDir := cfg.GetString("data-dir")
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.Open(filepath.Join(dataDir, "storage.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	api, err := client.New(cfg.GetString("base-url"), store)
	if err != nil {
		return nil, err
	}
	session := auth.NewSession(api, store, nil)
	if err := session.Restore(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	locale, err := i18n.Load()
	if err != nil {
		return nil, err
	}
	lang := cfg.GetString("language")
	if lang == "" {
		lang, _ = store.Get(storage.KeyLanguage)
	}
	if lang != "" {
		if err := locale.SetLanguage(lang); err != nil {
			return nil, err
		}
	}

	return &app{Storage: store, API: api, Session: session, Locale: locale}, nil
}

// requireSignIn returns an error for commands that only make sense with a
// signed-in session.
func (a *app) requireSignIn() error {
	if !a.Session.SignedIn() {
		return fmt.Errorf("not signed in, run 'playkit login' first")
	}
	return nil
}
