package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP and WebSocket",
		Long: `Serve the resolver over HTTP and WebSocket.

Endpoints:
  GET /resolve?url=<link>   resolve one link
  GET /patterns             compiled shapes per account
  GET /ws                   stream links, one reply per message
  GET /healthz              liveness
  GET /metrics              Prometheus metrics (unless disabled)

Examples:
  deeplink serve
  deeplink serve --port=9090
  deeplink serve --host=0.0.0.0 -c deploy/deeplink.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg, cmd.ErrOrStderr())
			st, err := buildStack(cfg, logger)
			if err != nil {
				return err
			}

			// Load accounts once so a broken source or shape table fails
			// at startup rather than on the first request.
			list, err := st.service.Patterns(cmd.Context())
			if err != nil {
				return err
			}

			srvCfg := server.DefaultConfig()
			srvCfg.Address = cfg.Address()
			srvCfg.MetricsPath = cfg.Server.MetricsPath
			opts := []server.Option{server.WithLogger(logger)}
			if st.registry != nil {
				opts = append(opts, server.WithGatherer(st.registry))
			} else {
				srvCfg.MetricsPath = ""
			}

			out := cmd.OutOrStdout()
			success(out, "Serving %d linked accounts", len(list))
			info(out, "http://%s/resolve?url=...", cfg.Address())
			if srvCfg.MetricsPath != "" {
				info(out, "http://%s%s", cfg.Address(), srvCfg.MetricsPath)
			}
			if cfg.Telemetry.Tracing {
				info(out, "tracing as %q", cfg.Telemetry.TracerName)
			}

			if err := server.New(st.service, srvCfg, opts...).Run(cmd.Context()); err != nil {
				return errors.New("DL501").
					WithDetail(fmt.Sprintf("listening on %s", cfg.Address())).
					Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}
