package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/platform"
	"github.com/vango-dev/deeplink/pkg/server"
)

func patternsCmd(flags *globalFlags) *cobra.Command {
	var (
		family string
		host   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the link shapes each account recognizes",
		Long: `List the compiled link shapes of every linked account.

With --family and --host the shapes of a single family and host are
printed without reading any configuration.

Examples:
  deeplink patterns
  deeplink patterns --family misskey --host misskey.io`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if family != "" || host != "" {
				return runFamilyPatterns(cmd.OutOrStdout(), family, host, asJSON)
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			st, err := buildStack(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			list, err := st.service.Patterns(cmd.Context())
			if err != nil {
				return err
			}
			return printPatterns(cmd.OutOrStdout(), list, asJSON)
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "Platform family (mastodon, misskey, bluesky, x)")
	cmd.Flags().StringVar(&host, "host", "", "Account host the shapes are bound to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func runFamilyPatterns(w io.Writer, familyName, host string, asJSON bool) error {
	if familyName == "" || host == "" {
		return errors.New("DL502").
			WithDetail("--family and --host must be given together").
			WithExample("deeplink patterns --family mastodon --host mastodon.social")
	}
	family, err := platform.ParseFamily(familyName)
	if err != nil {
		return errors.New("DL502").Wrap(err)
	}

	reg := deeplink.NewRegistry(deeplink.NewMemoryCache())
	entries, err := reg.Patterns(family, host)
	if err != nil {
		return err
	}
	return printPatterns(w, []deeplink.AccountPatterns{{Entries: entries}}, asJSON)
}

func printPatterns(w io.Writer, list []deeplink.AccountPatterns, asJSON bool) error {
	if asJSON {
		out := make([]server.AccountPatternsView, 0, len(list))
		for _, ap := range list {
			out = append(out, server.PatternsView(ap))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, ap := range list {
		if ap.Account.ID != "" {
			success(w, "%s (%s)", ap.Account.Key(), ap.Account.Family)
		}
		if len(ap.Entries) == 0 {
			info(w, "no public link shapes")
			continue
		}
		for _, e := range ap.Entries {
			info(w, "%-8s %s", e.Kind, e.Pattern.Template())
		}
	}
	return nil
}
