package servectl

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(DefaultConfig()) }

// buildRootCmdWith constructs the Cobra command tree wired to the action
// functions in this package.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "servectl",
		Short:         "Operator utilities for a servingd deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().String("addr", cfg.Addr, "Base URL of the servingd daemon (defaults SERVINGD_ADDR or http://127.0.0.1:8000)")
	root.PersistentFlags().Int("timeout", cfg.TimeoutSec, "HTTP timeout in seconds, 0 disables (defaults SERVECTL_TIMEOUT or 0)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("addr"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.Addr = strings.TrimRight(v, "/")
			}
		}
		if f := cmd.InheritedFlags().Lookup("timeout"); f != nil {
			var n int
			_, _ = fmt.Sscanf(f.Value.String(), "%d", &n)
			if n >= 0 {
				cfg.TimeoutSec = n
			}
		}
	}

	pingCmd := &cobra.Command{Use: "ping", Short: "Probe the daemon's liveness endpoint", Example: "  servectl ping --addr http://127.0.0.1:8000", RunE: func(cmd *cobra.Command, args []string) error {
		return runPing(cfg, cmd.OutOrStdout())
	}}
	root.AddCommand(pingCmd)

	var invokeOpts invokeOptions
	invokeCmd := &cobra.Command{Use: "invoke [prompt...]", Short: "Send one chat completion to the daemon", Example: "  servectl invoke \"write a haiku about the ocean\"\n  servectl invoke --stream --model alias-a \"tell me a story\"", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		invokeOpts.Prompt = strings.Join(args, " ")
		return runInvoke(cfg, &invokeOpts, cmd.OutOrStdout())
	}}
	invokeCmd.Flags().StringVar(&invokeOpts.Model, "model", "", "Model name for the request (empty uses the served default)")
	invokeCmd.Flags().StringVar(&invokeOpts.System, "system", "", "Optional system prompt prepended to the conversation")
	invokeCmd.Flags().BoolVar(&invokeOpts.Stream, "stream", false, "Request an event stream and print deltas as they arrive")
	invokeCmd.Flags().IntVar(&invokeOpts.MaxTokens, "max-tokens", 0, "Cap on generated tokens (0 leaves it to the engine)")
	invokeCmd.Flags().Float64Var(&invokeOpts.Temperature, "temperature", -1, "Sampling temperature (negative leaves it to the engine)")
	invokeCmd.Flags().BoolVar(&invokeOpts.Raw, "raw", false, "Print the raw response body instead of extracted content")
	root.AddCommand(invokeCmd)

	modelsCmd := &cobra.Command{Use: "models", Short: "List the names the deployment serves", RunE: func(cmd *cobra.Command, args []string) error {
		return runModels(cfg, cmd.OutOrStdout())
	}}
	root.AddCommand(modelsCmd)

	statusCmd := &cobra.Command{Use: "status", Short: "Print the daemon's status report", RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cfg, cmd.OutOrStdout())
	}}
	root.AddCommand(statusCmd)

	var resolveList bool
	resolveCmd := &cobra.Command{Use: "resolve [instance-type]", Short: "Resolve a hardware class to its tensor-parallel degree", Example: "  servectl resolve ml.g5.12xlarge\n  servectl resolve --list", RunE: func(cmd *cobra.Command, args []string) error {
		if resolveList {
			return runResolveList(cmd.OutOrStdout())
		}
		if len(args) != 1 {
			return fmt.Errorf("resolve requires exactly one instance type (or --list)")
		}
		return runResolve(args[0], cmd.OutOrStdout())
	}}
	resolveCmd.Flags().BoolVar(&resolveList, "list", false, "List every supported instance type and its degree")
	root.AddCommand(resolveCmd)

	var sanityConfigPath string
	sanityCmd := &cobra.Command{Use: "sanity", Short: "Report whether the current environment could start the daemon", Example: "  MODEL_ID=org/model ENGINE_URL=http://127.0.0.1:8001 servectl sanity", RunE: func(cmd *cobra.Command, args []string) error {
		return runSanity(sanityConfigPath, cmd.OutOrStdout())
	}}
	sanityCmd.Flags().StringVar(&sanityConfigPath, "config", "", "Optional config file merged under the environment (.yaml, .json or .toml)")
	root.AddCommand(sanityCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) }})
	root.AddCommand(completionCmd)

	return root
}
