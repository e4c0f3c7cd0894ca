package main

import (
	"fmt"
	"os"

	"github.com/caseark/caseark/internal/config"
	"github.com/caseark/caseark/internal/engine"
	"github.com/caseark/caseark/pkg/logging"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "caseark",
		Short:         "Case archive storage engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default config.toml)")

	rootCmd.AddCommand(driveCmd())
	rootCmd.AddCommand(caseCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(bookmarkCmd())
	rootCmd.AddCommand(docCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newEngine loads configuration and constructs the engine. Every command
// runs against a fresh engine; the process owns it for the command's
// lifetime and closes it on completion.
func newEngine() (*engine.Engine, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, nil, err
	}

	logger := logging.New(&cfg.Logging, nil)

	e, err := engine.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return e, e.Close, nil
}
