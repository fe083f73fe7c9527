package deeplink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vango-dev/deeplink/pkg/accounts"
)

// ErrAccountSource wraps failures of the account source.
var ErrAccountSource = errors.New("loading linked accounts")

// Resolution carries one link through the middleware chain.
type Resolution struct {
	// URL is the link as received.
	URL string

	// Accounts is the account list the link was resolved against.
	Accounts []accounts.Account

	// Matches holds the abstract route per matching account.
	Matches map[accounts.Key]AbstractRoute

	// Routes holds the materialized targets, ordered by account key.
	Routes []ConcreteRoute
}

// Matched reports whether any account matched.
func (r *Resolution) Matched() bool {
	return len(r.Matches) > 0
}

// Handler resolves a link in place.
type Handler func(ctx context.Context, res *Resolution) error

// Middleware wraps a Handler. Middleware runs in the order it was added:
// the first added is the outermost.
type Middleware func(next Handler) Handler

// Service ties an account source to the registry, resolver and
// materializer.
type Service struct {
	source     accounts.Source
	registry   *Registry
	resolver   *Resolver
	logger     *slog.Logger
	middleware []Middleware
	handler    Handler
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithRegistry sets the pattern registry, so callers can share one cache
// across services.
func WithRegistry(r *Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithMiddleware appends resolution middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Service) {
		s.middleware = append(s.middleware, mw...)
	}
}

// NewService creates a service resolving links against the accounts src
// supplies.
func NewService(src accounts.Source, opts ...Option) *Service {
	s := &Service{source: src}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = NewRegistry(nil)
	}
	s.resolver = NewResolver(s.registry)

	h := s.resolve
	for i := len(s.middleware) - 1; i >= 0; i-- {
		h = s.middleware[i](h)
	}
	s.handler = h
	return s
}

// Registry returns the service's pattern registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Resolve loads the current accounts and resolves rawURL against them.
// A link that matches nothing is not an error: the returned resolution
// simply has no routes.
func (s *Service) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	list, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	res := &Resolution{URL: rawURL, Accounts: list}
	if err := s.handler(ctx, res); err != nil {
		return res, err
	}

	s.logger.Debug("deeplink resolved",
		slog.String("url", rawURL),
		slog.Int("accounts", len(list)),
		slog.Int("matches", len(res.Matches)),
	)
	return res, nil
}

// AccountPatterns is the compiled pattern list of one account.
type AccountPatterns struct {
	Account accounts.Account
	Entries []Entry
}

// Patterns returns the compiled patterns of every current account.
func (s *Service) Patterns(ctx context.Context) ([]AccountPatterns, error) {
	list, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountPatterns, 0, len(list))
	for _, a := range list {
		entries, err := s.registry.Patterns(a.Family, a.Host)
		if err != nil {
			return nil, err
		}
		out = append(out, AccountPatterns{Account: a, Entries: entries})
	}
	return out, nil
}

func (s *Service) loadAccounts(ctx context.Context) ([]accounts.Account, error) {
	list, err := s.source.Accounts(ctx)
	if err != nil {
		s.logger.Warn("deeplink account source failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrAccountSource, err)
	}

	// Invalid and duplicate accounts are skipped; the rest still resolve.
	list, rejected := accounts.Sanitize(list)
	for _, err := range rejected {
		s.logger.Warn("deeplink account skipped", slog.Any("error", err))
	}

	if err := s.registry.Prepare(list); err != nil {
		s.logger.Error("deeplink pattern table is invalid", slog.Any("error", err))
		return nil, err
	}
	return list, nil
}

// resolve is the innermost handler.
func (s *Service) resolve(_ context.Context, res *Resolution) error {
	matches, err := s.resolver.Resolve(res.URL, res.Accounts)
	if err != nil {
		return err
	}
	res.Matches = matches
	res.Routes = MaterializeAll(matches)
	return nil
}

// MaterializeAll materializes every match, ordered by account key.
func MaterializeAll(matches map[accounts.Key]AbstractRoute) []ConcreteRoute {
	keys := make([]accounts.Key, 0, len(matches))
	for k := range matches {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Host != keys[j].Host {
			return keys[i].Host < keys[j].Host
		}
		return keys[i].ID < keys[j].ID
	})

	routes := make([]ConcreteRoute, 0, len(keys))
	for _, k := range keys {
		if r := Materialize(k, matches[k]); r != nil {
			routes = append(routes, r)
		}
	}
	return routes
}
