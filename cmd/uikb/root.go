package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"uikb/internal/catalog"
	"uikb/internal/component"
	"uikb/internal/config"
	"uikb/internal/slogutil"
	"uikb/internal/version"
)

var (
	// projectFlag is the --project flag value
	projectFlag string
	logLevel    string
	logFormat   string
	verbosity   int
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "uikb",
	Short: "uikb - UI component knowledge base for MCP clients",
	Long: `uikb scans a project's TypeScript component sources, extracts each
component's props, example usage and imports, and serves them together with
the design tokens to AI assistants over the Model Context Protocol.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("uikb version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "C", ".", "Project root directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: human or json (overrides config)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all logging")
}

// loadConfig resolves and validates the configuration for the project root.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(projectFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Flags win over config; -v and -q
// win over both.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if logLevel != "" {
		level = slogutil.LevelFromString(logLevel)
	}
	if verbosity > 0 || quiet {
		level = slogutil.LevelFromVerbosity(verbosity, quiet)
	}

	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}

	return slogutil.NewFormatLogger(w, format, level)
}

// newCatalog creates the component catalog described by cfg.
func newCatalog(cfg *config.Config, logger *slog.Logger) *catalog.Catalog {
	return catalog.New(catalog.Options{
		ComponentsDir: cfg.ComponentsPath(),
		ProjectRoot:   cfg.ProjectRoot,
		Scan: component.ScanOptions{
			Extensions: cfg.Scan.Extensions,
			IgnoreDirs: cfg.Scan.IgnoreDirs,
		},
		Workers: cfg.Scan.ParseWorkers,
		Logger:  logger,
	})
}

// stderr is where command loggers write; stdout stays machine-readable.
var stderr io.Writer = os.Stderr
