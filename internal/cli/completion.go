package cli

import (
	"github.com/spf13/cobra"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for specwatch.

To load completions:

Bash:
  $ source <(specwatch completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ specwatch completion bash > /etc/bash_completion.d/specwatch

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ specwatch completion zsh > "${fpath[1]}/_specwatch"

Fish:
  $ specwatch completion fish > ~/.config/fish/completions/specwatch.fish

PowerShell:
  PS> specwatch completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> specwatch completion powershell > specwatch.ps1
  # and source this file from your PowerShell profile.

Document arguments of watch, fetch and diff complete local .json, .yaml
and .yml files; --log-level, --log-format, --format and --snapshot-format
complete their accepted values.
`,
		// Override parent PersistentPreRunE: completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}

// specFileExtensions are offered when completing document locations.
var specFileExtensions = []string{"json", "yaml", "yml"}

// completeSpecFiles completes up to maxArgs positional document locations
// with local JSON and YAML files.
func completeSpecFiles(maxArgs int) cobra.CompletionFunc {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return specFileExtensions, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeValues completes a flag with a fixed set of values.
func completeValues(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerValueCompletions attaches completeValues to each named flag that
// cmd defines.
func registerValueCompletions(cmd *cobra.Command, flags map[string][]string) {
	for name, values := range flags {
		_ = cmd.RegisterFlagCompletionFunc(name, completeValues(values...))
	}
}
