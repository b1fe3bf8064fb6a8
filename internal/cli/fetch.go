package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/variantexplain/specwatch/internal/config"
	"github.com/variantexplain/specwatch/internal/logging"
	"github.com/variantexplain/specwatch/internal/openapi"
	"github.com/variantexplain/specwatch/internal/output"
)

type fetchOptions struct {
	raw    bool
	output string
	format string
}

func newFetchCommand() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Fetch the OpenAPI document once",
		Long: `Fetch retrieves the OpenAPI document once, the same way watch does, and
prints a summary of it: title, version and operations. Use --raw to print
the document itself and -o to save it.

Exit codes:
  0  Success
  1  Fetch failed or the document is not OpenAPI
  2  Invalid arguments`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSpecFiles(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), cmd, args, opts)
		},
	}

	registerSourceFlags(cmd)

	f := cmd.Flags()
	f.BoolVar(&opts.raw, "raw", false, "print the document instead of a summary")
	f.StringVarP(&opts.output, "output", "o", "", "also write the document to this file")
	f.StringVar(&opts.format, "format", string(output.FormatJSON), "document format for --raw and -o: json, yaml")

	registerValueCompletions(cmd, map[string][]string{
		"format": {string(output.FormatJSON), string(output.FormatYAML)},
	})

	return cmd
}

func runFetch(ctx context.Context, cmd *cobra.Command, args []string, opts *fetchOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	src, err := resolveSource(cfg, args)
	if err != nil {
		return err
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	if opts.output != "" {
		fw := output.NewFileWriter(opts.output, output.WithFormat(format), output.WithLogger(logger))
		if err := fw.Write(data); err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", fw.Path())
	}

	if opts.raw {
		if err := output.NewStdoutWriter(cmd.OutOrStdout(), format).Write(data); err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		return nil
	}

	doc, err := openapi.Parse(data)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("%s: %w", src, err)}
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, doc.String())

	for _, op := range doc.Operations {
		_, _ = fmt.Fprintf(w, "  %s\n", op)
	}

	return nil
}
