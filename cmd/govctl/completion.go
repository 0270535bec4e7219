package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/governance"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for govctl.

To load completions:

Bash:
  $ source <(govctl completion bash)

Zsh:
  $ govctl completion zsh > "${fpath[1]}/_govctl"
  $ compinit

Fish:
  $ govctl completion fish > ~/.config/fish/completions/govctl.fish

PowerShell:
  PS> govctl completion powershell | Out-String | Invoke-Expression
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerCompletions attaches value completions to flags and arguments.
// It runs after every command's init has defined its flags.
func registerCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("output", fixedCompletions("text", "json", "csv"))

	locales := fixedCompletions(string(governance.LocaleEN), string(governance.LocaleRU), string(governance.LocaleUK))
	for _, c := range []*cobra.Command{whyCmd, reconComputeCmd, lineageSummaryCmd, overrideTransitionsCmd} {
		_ = c.RegisterFlagCompletionFunc("locale", locales)
	}

	collections := fixedCompletions(
		governance.CollectionKpis,
		governance.CollectionLineage,
		governance.CollectionOverrides,
		governance.CollectionRules,
	)
	for _, c := range []*cobra.Command{catalogPutCmd, catalogGetCmd, catalogListCmd, catalogDeleteCmd} {
		c.ValidArgsFunction = firstArg(collections)
	}
}

func fixedCompletions(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// firstArg completes only the first positional argument.
func firstArg(fn func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return fn(cmd, args, toComplete)
	}
}
