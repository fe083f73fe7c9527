package pattern

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-dev/deeplink/pkg/routepath"
)

// Build renders the canonical URL the pattern matches for args. Matching the
// returned URL against the same pattern yields args back.
func (p *Pattern) Build(args map[string]Value) (string, error) {
	var b strings.Builder
	b.WriteString(p.scheme)
	b.WriteString("://")
	b.WriteString(p.host)

	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.Kind == Literal {
			b.WriteString(routepath.EscapeSegment(seg.Text))
			continue
		}
		text, err := argText(args, seg.Name, seg)
		if err != nil {
			return "", err
		}
		if text == "" {
			return "", fmt.Errorf("%w: %s", ErrEmptyArgument, seg.Name)
		}
		b.WriteString(routepath.EscapeSegment(seg.Prefix + text + seg.Suffix))
	}

	for i, q := range p.query {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(q.name))
		b.WriteByte('=')
		if q.isLiteral {
			b.WriteString(url.QueryEscape(q.literal))
			continue
		}
		text, err := argText(args, q.field, Segment{FieldKind: q.kind})
		if err != nil {
			return "", err
		}
		b.WriteString(url.QueryEscape(text))
	}

	return b.String(), nil
}

func argText(args map[string]Value, name string, seg Segment) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	if v.Kind() != seg.FieldKind {
		return "", fmt.Errorf("%w: %s is %s, want %s", ErrKindMismatch, name, v.Kind(), seg.FieldKind)
	}
	return v.String(), nil
}
