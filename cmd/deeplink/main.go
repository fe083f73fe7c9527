package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/deeplink/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, errors.Classify(err))
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	accounts   []string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "deeplink",
		Short: "Resolve social links into in-app navigation targets",
		Long: `deeplink recognizes links to Mastodon, Misskey, Bluesky and X content
and resolves them against every locally linked account that can open them.

Accounts come from deeplink.json, deeplink.yaml or deeplink.toml
(inline, a file, or an S3 object), or from --account flags:

  deeplink resolve --account mastodon:1@mastodon.social https://mastodon.social/@alice`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				plain = true
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: nearest deeplink.{json,yaml,toml})")
	rootCmd.PersistentFlags().StringArrayVarP(&flags.accounts, "account", "a", nil, "Linked account as family:id@host (repeatable; skips the config file)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		resolveCmd(flags),
		patternsCmd(flags),
		serveCmd(flags),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// plain disables the colored markers of success and warn.
var plain bool

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	marker := "\033[32m✓\033[0m"
	if plain {
		marker = "✓"
	}
	fmt.Fprintf(w, "%s %s\n", marker, fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	marker := "\033[33m⚠\033[0m"
	if plain {
		marker = "⚠"
	}
	fmt.Fprintf(w, "%s %s\n", marker, fmt.Sprintf(format, args...))
}
