package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/variantexplain/specwatch/internal/config"
	"github.com/variantexplain/specwatch/internal/logging"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the regeneration command once",
		Long: `Generate runs the configured regeneration command once, exactly as watch
would after a detected change, and prints its captured output.

Exit codes:
  0  Command succeeded
  1  Command failed or timed out
  2  Invalid arguments`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd)
		},
	}

	registerCommandFlags(cmd)

	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	w := cmd.ErrOrStderr()

	regen, err := newRegenerator(cfg, w, logger)
	if err != nil {
		return err
	}

	start := time.Now()

	if err := regen.Regenerate(ctx); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	_, _ = fmt.Fprintf(w, "regeneration → OK (%s)\n", time.Since(start).Round(time.Millisecond))

	return nil
}
