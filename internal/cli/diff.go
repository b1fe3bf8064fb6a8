package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/variantexplain/specwatch/internal/config"
	"github.com/variantexplain/specwatch/internal/openapi"
	"github.com/variantexplain/specwatch/internal/textdiff"
	"github.com/variantexplain/specwatch/internal/watch"
)

type diffOptions struct {
	// Return exit code 1 when the documents differ.
	exitCode bool

	// Lines of context around each change.
	context int
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two OpenAPI documents",
		Long: `Diff fetches two OpenAPI documents (URLs, file:// URLs or local paths) and
prints a unified diff of them, followed by the operations added and
removed and the semantic-version change of info.version.

Exit codes:
  0  Documents compared (or identical with --exit-code)
  1  Fetch failed, or the documents differ and --exit-code is set
  2  Invalid arguments`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSpecFiles(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	registerSourceFlags(cmd)

	f := cmd.Flags()
	f.BoolVar(&opts.exitCode, "exit-code", false, "exit with code 1 when the documents differ")
	f.IntVar(&opts.context, "context", textdiff.DefaultOptions().Context, "lines of context in the diff")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, oldLoc, newLoc string, opts *diffOptions) error {
	cfg := config.FromContext(ctx)

	oldData, err := fetchLocation(ctx, oldLoc, cfg)
	if err != nil {
		return err
	}

	newData, err := fetchLocation(ctx, newLoc, cfg)
	if err != nil {
		return err
	}

	diffOpts := textdiff.DefaultOptions()
	diffOpts.OldLabel = oldLoc
	diffOpts.NewLabel = newLoc
	diffOpts.Context = opts.context

	res, err := textdiff.ComputeDocuments(oldData, newData, diffOpts)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("computing diff: %w", err)}
	}

	w := cmd.OutOrStdout()
	textdiff.Write(w, res, !cfg.NoColor)
	writeComparison(w, oldData, newData)

	if opts.exitCode && res.HasDifferences() {
		return &ExitError{
			Code: 1,
			Err:  fmt.Errorf("documents differ: +%d -%d lines", res.Added, res.Removed),
		}
	}

	return nil
}

func fetchLocation(ctx context.Context, location string, cfg *config.Config) ([]byte, error) {
	src, err := watch.NewSource(location, cfg.FetchTimeout)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: err}
	}

	return data, nil
}

// writeComparison prints the operation and version changes when both
// documents are OpenAPI; otherwise it prints nothing.
func writeComparison(w io.Writer, oldData, newData []byte) {
	prev, prevErr := openapi.Parse(oldData)
	curr, currErr := openapi.Parse(newData)

	if err := errors.Join(prevErr, currErr); err != nil {
		return
	}

	cmp := openapi.Compare(prev, curr)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Operations: %s\n", openapi.Summary(cmp.Changes))

	for _, c := range cmp.Changes {
		sign := "+"
		if c.Kind == openapi.ChangeRemoved {
			sign = "-"
		}

		_, _ = fmt.Fprintf(w, "  %s %s\n", sign, c.Operation)
	}

	if cmp.VersionBump != openapi.BumpNone {
		_, _ = fmt.Fprintf(w, "Version: %s → %s (%s)\n", cmp.OldVersion, cmp.NewVersion, cmp.VersionBump)
	}
}
