package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/variantexplain/specwatch/internal/config"
	"github.com/variantexplain/specwatch/internal/logging"
	"github.com/variantexplain/specwatch/internal/watch"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [url]",
		Short: "Watch an OpenAPI document and regenerate the client on change",
		Long: `Watch fetches the OpenAPI document once per interval and compares it
byte-for-byte with the previous fetch. When it differs, the regeneration
command (default "npm run orval") is run once. Checks that fall while a
regeneration is running are skipped, never queued.

The document location is the positional argument or the configured url:
an http(s) URL, a file:// URL or a local path. Local files are also
re-checked on write, debounced by --debounce.

The first successful fetch only records the document unless
--generate-on-start is set. Fetch failures are logged and polling
continues. SIGINT or SIGTERM stops the watcher with exit code 0.`,
		Example: `  specwatch watch
  specwatch watch http://localhost:8000/openapi.json --command "npm run orval"
  specwatch watch ./openapi.yaml --show-diff --snapshot .cache/openapi.json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSpecFiles(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args)
		},
	}

	registerWatchFlags(cmd)

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	out := watch.NewSyncWriter(cmd.ErrOrStderr())

	src, err := resolveSource(cfg, args)
	if err != nil {
		return err
	}

	regen, err := newRegenerator(cfg, out, logger)
	if err != nil {
		return err
	}

	snapshot, err := newSnapshotWriter(cfg, logger)
	if err != nil {
		return err
	}

	w := watch.New(src, regen, watch.Options{
		Interval:        cfg.Interval,
		GenerateOnStart: cfg.GenerateOnStart,
		ShowDiff:        cfg.ShowDiff,
		Color:           !cfg.NoColor,
		Notify:          !cfg.NoNotify,
		Debounce:        cfg.Debounce,
		Snapshot:        snapshot,
		Logger:          logging.Component(logger, "watcher"),
		Out:             out,
	})

	unsubscribe := w.SubscribePhase(func(p watch.Phase) {
		logger.Debug("watcher phase changed", slog.String("phase", string(p)))
	})
	defer unsubscribe()

	logger.Debug("starting watcher",
		slog.String("source", src.String()),
		slog.String("command", regen.Command()),
		slog.Duration("interval", cfg.Interval),
	)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(sigCtx); err != nil {
		return err
	}

	// The generator runs in its own process group and does not see the
	// terminal's SIGINT. A second signal falls through to the default handler.
	stop()

	if w.Generating() {
		_, _ = fmt.Fprintln(out, "waiting for the running regeneration to finish (interrupt again to abort)")
	}

	w.Wait()

	return nil
}
