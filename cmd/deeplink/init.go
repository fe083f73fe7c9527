package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/deeplink/internal/config"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/platform"
)

func initCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter configuration file",
		Long: `Write a starter deeplink configuration with one example account.

Examples:
  deeplink init
  deeplink init --format toml ./deploy`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := runInit(dir, format, force)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			info(cmd.OutOrStdout(), "Try: deeplink resolve -c %s https://mastodon.social/@Gargron", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "File format (json, yaml or toml)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func runInit(dir, format string, force bool) (string, error) {
	switch accounts.Format(format) {
	case accounts.FormatJSON, accounts.FormatYAML, accounts.FormatTOML:
	default:
		return "", errors.New("DL205").
			WithDetail(fmt.Sprintf("--format %q is not json, yaml or toml", format))
	}

	path := filepath.Join(dir, "deeplink."+format)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("DL502").
				WithDetail(path + " already exists").
				WithSuggestion("Pass --force to overwrite it")
		}
	}

	cfg := config.New()
	cfg.Accounts = []accounts.Account{
		{ID: "1", Host: "mastodon.social", Family: platform.Mastodon},
	}
	if err := cfg.SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}
