package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/variantexplain/specwatch/internal/version"
)

func newVersionCommand() *cobra.Command {
	var jsonOutput, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Display the version, git commit, build date, Go version, and platform.

Release builds carry values injected with -ldflags. Binaries built with
"go install" report the module version and VCS revision embedded by the Go
toolchain instead; a "+dirty" commit means the tree had local changes. The
JSON "source" field tells which of the two applied.`,
		Args: cobra.NoArgs,
		// Override parent PersistentPreRunE: version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput && short {
				return &ExitError{Code: 2, Err: errors.New("--json and --short are mutually exclusive")}
			}

			info := version.GetInfo()
			w := cmd.OutOrStdout()

			switch {
			case short:
				_, err := fmt.Fprintln(w, info.Version)
				return err
			case jsonOutput:
				j, err := info.JSON()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(w, j)

				return err
			}

			_, err := fmt.Fprintln(w, info.String())

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")

	return cmd
}
