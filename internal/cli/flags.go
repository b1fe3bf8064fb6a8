package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/variantexplain/specwatch/internal/config"
	"github.com/variantexplain/specwatch/internal/logging"
	"github.com/variantexplain/specwatch/internal/output"
	"github.com/variantexplain/specwatch/internal/watch"
)

// The flags below carry no variables: config.Load binds them to the keys of
// the same name, so flag values arrive through config.Config.

// registerSourceFlags adds the spec fetching flags to a cobra command.
func registerSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Duration("fetch-timeout", config.DefaultFetchTimeout, "timeout for each spec fetch (0 disables)")
}

// registerCommandFlags adds the regeneration command flags to a cobra command.
func registerCommandFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("command", config.DefaultCommand, "shell command that regenerates the API client")
	f.String("dir", "", "working directory of the regeneration command")
	f.Duration("generate-timeout", 0, "timeout for each regeneration (0 disables)")
}

// registerSnapshotFlags adds the snapshot flags to a cobra command.
func registerSnapshotFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("snapshot", "", "write every recorded spec to this file")
	f.String("snapshot-format", config.SnapshotFormatJSON, "snapshot format: json, yaml")

	registerValueCompletions(cmd, map[string][]string{
		"snapshot-format": {config.SnapshotFormatJSON, config.SnapshotFormatYAML},
	})
}

// registerWatchFlags registers every flag of the watch command.
func registerWatchFlags(cmd *cobra.Command) {
	registerSourceFlags(cmd)
	registerCommandFlags(cmd)
	registerSnapshotFlags(cmd)

	f := cmd.Flags()
	f.Duration("interval", config.DefaultInterval, "time between two checks")
	f.Bool("generate-on-start", false, "also regenerate after the first successful fetch")
	f.Bool("show-diff", false, "print a unified diff for every detected change")
	f.Duration("debounce", config.DefaultDebounce, "quiet period for file events on local specs")
	f.Bool("no-notify", false, "disable file-system notifications for local specs")
}

// resolveSource builds the spec source from the optional positional argument,
// falling back to the configured url.
func resolveSource(cfg *config.Config, args []string) (watch.Source, error) {
	location := cfg.URL
	if len(args) > 0 {
		location = args[0]
	}

	src, err := watch.NewSource(location, cfg.FetchTimeout)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	return src, nil
}

// newRegenerator builds the regeneration command from cfg.
func newRegenerator(cfg *config.Config, out io.Writer, logger *slog.Logger) (*watch.CommandRegenerator, error) {
	regen, err := watch.NewCommandRegenerator(cfg.Command, watch.CommandOptions{
		Dir:     cfg.Dir,
		Timeout: cfg.GenerateTimeout,
		Out:     out,
		Logger:  logging.Component(logger, "regenerator"),
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	return regen, nil
}

// newSnapshotWriter returns nil when no snapshot path is configured.
func newSnapshotWriter(cfg *config.Config, logger *slog.Logger) (output.Writer, error) {
	if cfg.Snapshot == "" {
		return nil, nil
	}

	format, err := output.ParseFormat(cfg.SnapshotFormat)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("snapshot: %w", err)}
	}

	return output.NewFileWriter(cfg.Snapshot,
		output.WithFormat(format),
		output.WithLogger(logger),
	), nil
}
