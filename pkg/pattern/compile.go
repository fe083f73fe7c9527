// Package pattern compiles URL templates into matchers for deep links.
//
// A template is a URL whose path segments and query values may contain
// {name} placeholders bound to fields of a schema:
//
//	https://mastodon.social/@{handle}/{id}
//	https://example.com/search?q={query}&includeHistory={includeHistory}
//
// Compiling a template is a one-time, structural step: any error means the
// static template table is wrong. Matching is the opposite. It runs on
// untrusted input and never fails loudly; a URL either matches or it does
// not.
package pattern

import (
	"net/url"
	"strings"

	"github.com/vango-dev/deeplink/pkg/routepath"
	"github.com/vango-dev/deeplink/pkg/schema"
)

// SegmentKind distinguishes literal path segments from placeholders.
type SegmentKind int

const (
	// Literal segments must equal the request segment exactly.
	Literal SegmentKind = iota
	// Placeholder segments capture a typed argument.
	Placeholder
)

// Segment is one compiled path segment.
type Segment struct {
	Kind SegmentKind

	// Text is the literal segment text. Empty for placeholders.
	Text string

	// Name is the placeholder (and schema field) name.
	Name string

	// Prefix and Suffix are literal text around the placeholder inside the
	// same segment, as in "@{handle}".
	Prefix string
	Suffix string

	// FieldKind is the schema kind the capture is parsed as.
	FieldKind schema.Kind

	parse Parser
}

// queryParam is one declared query parameter.
type queryParam struct {
	name string

	// literal, when set, is a fixed value the request must carry.
	literal   string
	isLiteral bool

	field string
	kind  schema.Kind
	parse Parser
}

// Pattern is a compiled URL template. It is immutable and safe for
// concurrent use.
type Pattern struct {
	schema   *schema.Schema
	template string
	scheme   string
	host     string
	segments []Segment
	query    []queryParam
}

// Compile binds a template to a schema.
func Compile(s *schema.Schema, template string) (*Pattern, error) {
	fail := func(placeholder string, err error) (*Pattern, error) {
		return nil, &CompileError{Template: template, Placeholder: placeholder, Err: err}
	}

	scheme, host, path, rawQuery, ok := splitTemplate(template)
	if !ok {
		return fail("", ErrMalformedTemplate)
	}

	p := &Pattern{
		schema:   s,
		template: template,
		scheme:   strings.ToLower(scheme),
		host:     host,
	}

	bound := make(map[string]bool, s.Len())
	bind := func(name string) (schema.Field, Parser, error) {
		field, _, ok := s.Lookup(name)
		if !ok {
			return schema.Field{}, nil, ErrUnknownField
		}
		if bound[name] {
			return schema.Field{}, nil, ErrDuplicatePlaceholder
		}
		parse, ok := ParserFor(field.Kind)
		if !ok {
			return schema.Field{}, nil, ErrNoParser
		}
		bound[name] = true
		return field, parse, nil
	}

	rawSegments, err := routepath.Segments(path)
	if err != nil {
		return fail("", ErrMalformedTemplate)
	}
	p.segments = make([]Segment, 0, len(rawSegments))
	for _, raw := range rawSegments {
		prefix, name, suffix, isPlaceholder, ok := splitSegment(raw)
		if !ok {
			return fail("", ErrMalformedTemplate)
		}
		if !isPlaceholder {
			p.segments = append(p.segments, Segment{Kind: Literal, Text: raw})
			continue
		}
		field, parse, err := bind(name)
		if err != nil {
			return fail(name, err)
		}
		p.segments = append(p.segments, Segment{
			Kind:      Placeholder,
			Name:      name,
			Prefix:    prefix,
			Suffix:    suffix,
			FieldKind: field.Kind,
			parse:     parse,
		})
	}

	if rawQuery != "" {
		for _, pair := range strings.Split(rawQuery, "&") {
			if pair == "" {
				continue
			}
			key, value, _ := strings.Cut(pair, "=")
			if key == "" || strings.ContainsAny(key, "{}") {
				return fail("", ErrMalformedTemplate)
			}
			prefix, name, suffix, isPlaceholder, ok := splitSegment(value)
			if !ok || prefix != "" || suffix != "" {
				return fail("", ErrMalformedTemplate)
			}
			if !isPlaceholder {
				literal, err := url.QueryUnescape(value)
				if err != nil {
					return fail("", ErrMalformedTemplate)
				}
				p.query = append(p.query, queryParam{name: key, literal: literal, isLiteral: true})
				continue
			}
			field, parse, err := bind(name)
			if err != nil {
				return fail(name, err)
			}
			p.query = append(p.query, queryParam{name: key, field: name, kind: field.Kind, parse: parse})
		}
	}

	for _, f := range s.Fields() {
		if !f.HasDefault && !bound[f.Name] {
			return fail(f.Name, ErrUnboundField)
		}
	}

	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(s *schema.Schema, template string) *Pattern {
	p, err := Compile(s, template)
	if err != nil {
		panic(err)
	}
	return p
}

// Schema returns the schema the pattern is bound to.
func (p *Pattern) Schema() *schema.Schema { return p.schema }

// SchemaID returns the bound schema's identifier.
func (p *Pattern) SchemaID() string { return p.schema.ID() }

// Template returns the source template.
func (p *Pattern) Template() string { return p.template }

// Host returns the lower-cased host the pattern matches.
func (p *Pattern) Host() string { return p.host }

// SegmentCount returns the fixed number of path segments.
func (p *Pattern) SegmentCount() int { return len(p.segments) }

// Segments returns a copy of the compiled path segments.
func (p *Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// QueryNames returns the declared query parameter names in template order.
func (p *Pattern) QueryNames() []string {
	names := make([]string, len(p.query))
	for i, q := range p.query {
		names[i] = q.name
	}
	return names
}

// Placeholders returns every placeholder name, path first, in template order.
func (p *Pattern) Placeholders() []string {
	var names []string
	for _, seg := range p.segments {
		if seg.Kind == Placeholder {
			names = append(names, seg.Name)
		}
	}
	for _, q := range p.query {
		if !q.isLiteral {
			names = append(names, q.field)
		}
	}
	return names
}

// splitTemplate breaks a template into scheme, host, path and raw query.
// The host must be concrete; host placeholders are substituted before
// compilation.
func splitTemplate(template string) (scheme, host, path, rawQuery string, ok bool) {
	scheme, rest, found := strings.Cut(template, "://")
	if !found || scheme == "" {
		return "", "", "", "", false
	}
	rest, rawQuery, _ = strings.Cut(rest, "?")
	host = rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		host, path = rest[:i], rest[i:]
	}
	if host == "" || strings.ContainsAny(host, "{}") {
		return "", "", "", "", false
	}
	return scheme, normalizeHost(host), path, rawQuery, true
}

// splitSegment finds at most one {name} placeholder in s.
func splitSegment(s string) (prefix, name, suffix string, isPlaceholder, ok bool) {
	open := strings.IndexByte(s, '{')
	end := strings.IndexByte(s, '}')
	if open < 0 && end < 0 {
		return "", "", "", false, true
	}
	if open < 0 || end < open {
		return "", "", "", false, false
	}
	prefix, name, suffix = s[:open], s[open+1:end], s[end+1:]
	if name == "" || strings.ContainsAny(name, "{") || strings.ContainsAny(suffix, "{}") {
		return "", "", "", false, false
	}
	return prefix, name, suffix, true, true
}

// normalizeHost lower-cases a host and drops any port.
func normalizeHost(host string) string {
	u := url.URL{Host: host}
	return strings.ToLower(u.Hostname())
}
