package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vango-dev/deeplink/internal/config"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/middleware"
	"github.com/vango-dev/deeplink/pkg/platform"
)

// loadConfig returns the configuration selected by the global flags.
// --account flags build an inline configuration and skip the file.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if len(flags.accounts) > 0 {
		cfg := config.New()
		for _, spec := range flags.accounts {
			a, err := parseAccount(spec)
			if err != nil {
				return nil, err
			}
			cfg.Accounts = append(cfg.Accounts, a)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAccount parses "family:id@host". The id may itself contain ':'.
func parseAccount(spec string) (accounts.Account, error) {
	familyName, rest, ok := strings.Cut(spec, ":")
	at := strings.LastIndexByte(rest, '@')
	if !ok || at <= 0 || at == len(rest)-1 {
		return accounts.Account{}, errors.New("DL502").
			WithDetail(fmt.Sprintf("--account %q is not family:id@host", spec)).
			WithExample("--account mastodon:1@mastodon.social")
	}
	family, err := platform.ParseFamily(familyName)
	if err != nil {
		return accounts.Account{}, errors.New("DL502").Wrap(err)
	}
	return accounts.Account{ID: rest[:at], Host: rest[at+1:], Family: family}, nil
}

// newLogger builds the slog logger for the configured level.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// stack is a service with its observability wiring.
type stack struct {
	service  *deeplink.Service
	registry *prometheus.Registry
}

// buildStack wires the account source, pattern registry, metrics and
// tracing described by cfg into a service.
func buildStack(cfg *config.Config, logger *slog.Logger) (*stack, error) {
	src, err := cfg.Source()
	if err != nil {
		return nil, err
	}

	var (
		regOpts []deeplink.RegistryOption
		mws     []deeplink.Middleware
		promReg *prometheus.Registry
	)

	if cfg.Telemetry.Tracing {
		mws = append(mws, middleware.OpenTelemetry(
			middleware.WithTracerName(cfg.Telemetry.TracerName),
		))
	}
	if !cfg.Server.DisableMetrics {
		promReg = prometheus.NewRegistry()
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := middleware.NewMetrics(
			middleware.WithRegistry(promReg),
			middleware.WithNamespace(cfg.Telemetry.MetricsNamespace),
		)
		regOpts = append(regOpts, deeplink.WithCompileHook(m.CompileHook()))
		mws = append(mws, m.Middleware())
	}

	svc := deeplink.NewService(src,
		deeplink.WithLogger(logger),
		deeplink.WithRegistry(deeplink.NewRegistry(deeplink.NewMemoryCache(), regOpts...)),
		deeplink.WithMiddleware(mws...),
	)
	return &stack{service: svc, registry: promReg}, nil
}
