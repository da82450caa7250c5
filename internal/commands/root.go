package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ledgerline/ccimport/internal/buildinfo"
	"github.com/ledgerline/ccimport/internal/config"
)

// globalOptions are the persistent flags shared by all subcommands.
type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "ccimport",
		Short:   "Import credit card CSV exports into a transaction store",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newFormatsCommand(opts))
	rootCmd.AddCommand(newRulesCommand(opts))

	return rootCmd
}

// newLogger builds the stderr logger. flagLevel wins over cfgLevel.
func newLogger(w io.Writer, flagLevel, cfgLevel string) (*log.Logger, error) {
	level := cfgLevel
	if flagLevel != "" {
		level = flagLevel
	}
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "ccimport",
		Level:           lvl,
	}), nil
}

// loadConfig reads the config file and builds the logger it asks for.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
