package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/pattern"
	"github.com/vango-dev/deeplink/pkg/server"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <link>...",
		Short: "Resolve links against the linked accounts",
		Long: `Resolve one or more links against every linked account.

Each link prints one navigation target per account that can open it.
A link no account recognizes, or an argument that is not an http(s)
link at all, prints a warning and is not an error. With --strict a
non-link argument fails the command.

Examples:
  deeplink resolve https://mastodon.social/@alice
  deeplink resolve --json https://bsky.app/profile/alice.bsky.social/post/3k
  deeplink resolve -a x:1@x.com https://x.com/alice/status/42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			st, err := buildStack(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return runResolve(cmd, st.service, args, asJSON, strict)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per link")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on arguments that are not http(s) links")

	return cmd
}

func runResolve(cmd *cobra.Command, svc *deeplink.Service, links []string, asJSON, strict bool) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)

	for _, link := range links {
		if _, ok := pattern.ParseRequest(link); !ok && strict {
			return errors.New("DL401").WithDetail(fmt.Sprintf("%q is not an absolute http(s) link", link))
		}

		res, err := svc.Resolve(cmd.Context(), link)
		if err != nil {
			return err
		}

		if asJSON {
			if err := enc.Encode(server.ResolveResponse{URL: link, Routes: server.RouteViews(res.Routes)}); err != nil {
				return err
			}
			continue
		}
		printResolution(out, link, res)
	}
	return nil
}

func printResolution(w io.Writer, link string, res *deeplink.Resolution) {
	if !res.Matched() {
		warn(w, "%s: no linked account opens this link", link)
		return
	}
	success(w, "%s", link)
	for _, r := range res.Routes {
		info(w, "%-8s %-28s %s", r.Kind(), r.Account(), r.Path())
		if detail := routeDetail(r); detail != "" {
			info(w, "%-8s %s", "", detail)
		}
	}
}

func routeDetail(r deeplink.ConcreteRoute) string {
	switch r := r.(type) {
	case deeplink.ProfileRoute:
		return "user " + r.UserName + " on " + r.Host
	case deeplink.PostRoute:
		parts := []string{"post " + r.Content.ID + " on " + r.Content.Host}
		if r.Handle != "" {
			parts = append(parts, "by "+r.Handle)
		}
		return strings.Join(parts, " ")
	}
	return ""
}
