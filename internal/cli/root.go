// Package cli implements the cobra command tree for specwatch.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/variantexplain/specwatch/internal/config"
	"github.com/variantexplain/specwatch/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	return execute(NewRootCommand(), os.Stderr)
}

// execute runs cmd and reports its error on errOut. Errors are printed here
// because the command tree silences cobra's own error output.
func execute(cmd *cobra.Command, errOut io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return 1
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "specwatch",
		Short: "Regenerate API clients when an OpenAPI document changes",
		Long: `specwatch keeps a generated API client in sync with a backend during
development.

It polls the backend's OpenAPI document, compares each fetch byte-for-byte
with the previous one, and runs the client generator (for example
"npm run orval") whenever the document changes. At most one regeneration
runs at a time.

Configuration is read from flags, SPECWATCH_* environment variables and
.specwatch.yaml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .specwatch.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	registerValueCompletions(cmd, map[string][]string{
		"log-level":  {"debug", "info", "warn", "error"},
		"log-format": {"text", "json"},
	})

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	// Register subcommands.
	cmd.AddCommand(
		newWatchCommand(),
		newFetchCommand(),
		newGenerateCommand(),
		newDiffCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
