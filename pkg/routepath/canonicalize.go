// Package routepath splits URL paths into the decoded segment lists that
// link patterns are compiled from and matched against.
//
// Templates and incoming links go through the same canonicalization, so a
// trailing slash, a doubled slash or a "." segment never changes how many
// segments a path has.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path canonicalization errors.
var (
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in segment")
)

// Canonicalize normalizes an escaped URL path:
//   - collapse multiple slashes (/@alice//1 → /@alice/1)
//   - drop "." segments and the trailing slash
//   - resolve ".." segments
//
// Backslashes, NUL bytes, malformed percent escapes and ".." above the root
// are rejected. The result always starts with "/".
func Canonicalize(escaped string) (string, error) {
	if strings.Contains(escaped, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(escaped, "\x00") || strings.Contains(strings.ToUpper(escaped), "%00") {
		return "", ErrNullByteInPath
	}
	if strings.Contains(escaped, "%") {
		if err := validatePercentEscapes(escaped); err != nil {
			return "", err
		}
	}

	var out []string
	for _, seg := range strings.Split(escaped, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", ErrPathEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/"), nil
}

// Segments canonicalizes an escaped path and returns its decoded segments.
// The root path has no segments.
func Segments(escaped string) ([]string, error) {
	canonical, err := Canonicalize(escaped)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimPrefix(canonical, "/")
	if trimmed == "" {
		return nil, nil
	}

	raw := strings.Split(trimmed, "/")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		decoded, err := DecodeSegment(seg)
		if err != nil {
			return nil, err
		}
		segments = append(segments, decoded)
	}
	return segments, nil
}

// DecodeSegment percent-decodes a single path segment. A decoded "/" is
// rejected: no route argument may span segments.
func DecodeSegment(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// EscapeSegment is the inverse of DecodeSegment.
func EscapeSegment(segment string) string {
	return url.PathEscape(segment)
}

// validatePercentEscapes checks that every '%' starts a %XX hex escape.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); {
		if path[i] != '%' {
			i++
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 3
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
