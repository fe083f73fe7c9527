// Package platform names the backend families a linked account can belong
// to and the canonical URL shapes each family publishes.
package platform

import (
	"fmt"
	"strings"
)

// Family is the class of canonical URL shapes shared by a backend protocol.
type Family int

const (
	// Unknown is the zero Family.
	Unknown Family = iota
	Mastodon
	Misskey
	Bluesky
	X
	// VVO has no canonical public URLs and is never deep-linkable.
	VVO
)

var familyNames = map[Family]string{
	Mastodon: "mastodon",
	Misskey:  "misskey",
	Bluesky:  "bluesky",
	X:        "x",
	VVO:      "vvo",
}

// Families lists every known family in declaration order.
func Families() []Family {
	return []Family{Mastodon, Misskey, Bluesky, X, VVO}
}

// String returns the lower-case family name.
func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// ParseFamily parses a family name. "twitter" is accepted for X.
func ParseFamily(s string) (Family, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "twitter" {
		return X, nil
	}
	for f, n := range familyNames {
		if n == name {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("unknown platform family %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	if _, ok := familyNames[f]; !ok {
		return nil, fmt.Errorf("unknown platform family %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so families decode
// from JSON, YAML and TOML config files by name.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Shapes are a family's canonical link templates. "{host}" stands for the
// account's host; an empty template means the family has no such link.
type Shapes struct {
	Profile string
	Post    string
}

var shapes = map[Family]Shapes{
	Mastodon: {
		Profile: "https://{host}/@{handle}",
		Post:    "https://{host}/@{handle}/{id}",
	},
	Misskey: {
		Profile: "https://{host}/@{handle}",
		Post:    "https://{host}/notes/{id}",
	},
	Bluesky: {
		Profile: "https://{host}/profile/{handle}",
		Post:    "https://{host}/profile/{handle}/post/{id}",
	},
	X: {
		Profile: "https://{host}/{handle}",
		Post:    "https://{host}/{handle}/status/{id}",
	},
}

// ShapesFor returns the canonical templates of a family. VVO and unknown
// families have none.
func ShapesFor(f Family) Shapes {
	return shapes[f]
}

// HostPlaceholder is substituted with the account host before compilation.
const HostPlaceholder = "{host}"

// Expand substitutes host into a template.
func Expand(template, host string) string {
	return strings.ReplaceAll(template, HostPlaceholder, host)
}
