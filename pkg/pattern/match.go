package pattern

import (
	"net/url"
	"strings"

	"github.com/vango-dev/deeplink/pkg/routepath"
)

// Request is an external URL reduced to the parts patterns look at.
type Request struct {
	// Host is lower-cased and carries no port.
	Host string

	// Segments are the decoded, canonical path segments.
	Segments []string

	// Query holds the first value of every query parameter.
	Query map[string]string
}

// ParseRequest reduces a raw URL to a Request. Only absolute http and https
// URLs with a host are accepted; anything else reports false.
func ParseRequest(raw string) (Request, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Request{}, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return Request{}, false
	}
	host := normalizeHost(u.Host)
	if host == "" {
		return Request{}, false
	}

	segments, err := routepath.Segments(u.EscapedPath())
	if err != nil {
		return Request{}, false
	}

	// ParseQuery keeps every well-formed pair even when it reports an
	// error for another one; unrelated junk must not block a match.
	values, _ := url.ParseQuery(u.RawQuery)
	query := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	return Request{Host: host, Segments: segments, Query: query}, true
}

// Match is the result of a successful match.
type Match struct {
	SchemaID string
	Args     map[string]Value
}

// Match tests req against the pattern. It never panics and never returns an
// error: every kind of mismatch reports false.
func (p *Pattern) Match(req Request) (Match, bool) {
	if !strings.EqualFold(req.Host, p.host) {
		return Match{}, false
	}
	if len(req.Segments) != len(p.segments) {
		return Match{}, false
	}

	args := make(map[string]Value, len(p.segments)+len(p.query))
	for i, seg := range p.segments {
		raw := req.Segments[i]
		if seg.Kind == Literal {
			if raw != seg.Text {
				return Match{}, false
			}
			continue
		}
		capture, ok := trimAffixes(raw, seg.Prefix, seg.Suffix)
		if !ok {
			return Match{}, false
		}
		v, ok := seg.parse(capture)
		if !ok {
			return Match{}, false
		}
		args[seg.Name] = v
	}

	for _, q := range p.query {
		raw, ok := req.Query[q.name]
		if !ok {
			return Match{}, false
		}
		if q.isLiteral {
			if raw != q.literal {
				return Match{}, false
			}
			continue
		}
		v, ok := q.parse(raw)
		if !ok {
			return Match{}, false
		}
		args[q.field] = v
	}

	return Match{SchemaID: p.schema.ID(), Args: args}, true
}

// MatchURL parses raw and matches it in one step.
func (p *Pattern) MatchURL(raw string) (Match, bool) {
	req, ok := ParseRequest(raw)
	if !ok {
		return Match{}, false
	}
	return p.Match(req)
}

// trimAffixes strips prefix and suffix from s. The remaining capture must be
// non-empty.
func trimAffixes(s, prefix, suffix string) (string, bool) {
	if len(s) <= len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}
