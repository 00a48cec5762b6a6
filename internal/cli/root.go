// Package cli implements the nutrivision command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrivision/config"
	"nutrivision/internal/app"
	"nutrivision/pkg/logger"
)

var (
	dbPath     string
	formatFlag string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "nutrivision",
	Short:        "Photo-based meal tracking",
	Long:         "Log meals from photos, track calories against your profile, and get dietary advice.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $STORAGE_PATH or ~/.nutrivision/nutrivision.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text or json")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
}

func newLogger() *logger.Logger {
	if verbose {
		return logger.NewDevelopment()
	}
	return logger.NewNop()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg, nil
}

// openApp builds the application. needAI is set by commands that call the
// model, which then fail early without an API key.
func openApp(needAI bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if needAI {
		if err := cfg.ValidateGPT(); err != nil {
			return nil, err
		}
	}
	return app.New(cfg, newLogger())
}

func checkFormat() error {
	switch formatFlag {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q (want text or json)", formatFlag)
}
