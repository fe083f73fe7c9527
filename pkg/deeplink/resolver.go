package deeplink

import (
	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/pattern"
)

// Resolver matches links against every linked account's patterns.
type Resolver struct {
	registry *Registry
}

// NewResolver returns a resolver backed by reg.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Resolve returns the abstract route of rawURL for each account whose
// patterns match it. Accounts that share a host each get their own entry.
// A link that matches nothing, or is not a URL at all, yields an empty map.
//
// The error is reserved for structural failures while compiling an
// account's patterns; untrusted input never produces one. On error no
// matches are returned.
func (r *Resolver) Resolve(rawURL string, list []accounts.Account) (map[accounts.Key]AbstractRoute, error) {
	out := make(map[accounts.Key]AbstractRoute)
	req, ok := pattern.ParseRequest(rawURL)
	if !ok {
		return out, nil
	}
	if err := r.resolveRequest(req, list, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) resolveRequest(req pattern.Request, list []accounts.Account, out map[accounts.Key]AbstractRoute) error {
	for _, a := range list {
		entries, err := r.registry.Patterns(a.Family, a.Host)
		if err != nil {
			return err
		}
		if route, ok := matchEntries(entries, req); ok {
			out[a.Key()] = route
		}
	}
	return nil
}

// matchEntries returns the first entry that matches req. Segment counts of
// a family's shapes differ, so at most one entry can match.
func matchEntries(entries []Entry, req pattern.Request) (AbstractRoute, bool) {
	for _, e := range entries {
		m, ok := e.Pattern.Match(req)
		if !ok {
			continue
		}
		route, err := decodeRoute(e.Kind, m)
		if err != nil {
			continue
		}
		return route, true
	}
	return nil, false
}
