package deeplink

import (
	"fmt"

	"github.com/vango-dev/deeplink/pkg/flat"
	"github.com/vango-dev/deeplink/pkg/pattern"
	"github.com/vango-dev/deeplink/pkg/schema"
)

// RouteKind names the kind of link a pattern recognizes.
type RouteKind int

const (
	KindProfile RouteKind = iota + 1
	KindPost
)

// String returns the kind name.
func (k RouteKind) String() string {
	switch k {
	case KindProfile:
		return "profile"
	case KindPost:
		return "post"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AbstractRoute is the platform-agnostic meaning of a matched link. It is
// either a Profile or a Post.
type AbstractRoute interface {
	Kind() RouteKind
	isAbstractRoute()
}

// Profile is a link to a user profile. Handle may be fully qualified
// ("bob@misskey.io").
type Profile struct {
	Handle string `json:"handle"`
}

// Kind implements AbstractRoute.
func (Profile) Kind() RouteKind { return KindProfile }
func (Profile) isAbstractRoute() {}

// Post is a link to a single post. Handle is empty for families whose post
// URLs do not carry the author.
type Post struct {
	Handle string `json:"handle,omitempty"`
	ID     string `json:"id"`
}

// Kind implements AbstractRoute.
func (Post) Kind() RouteKind { return KindPost }
func (Post) isAbstractRoute() {}

// Route schemas. A broken definition here aborts at init.
var (
	profileSchema = schema.MustCompile("profile",
		schema.Field{Name: "handle", Kind: schema.String},
	)

	postSchema = schema.MustCompile("post",
		schema.Field{Name: "handle", Kind: schema.String, HasDefault: true},
		schema.Field{Name: "id", Kind: schema.String},
	)
)

// schemaFor returns the schema a route kind decodes with.
func schemaFor(k RouteKind) *schema.Schema {
	switch k {
	case KindProfile:
		return profileSchema
	case KindPost:
		return postSchema
	default:
		return nil
	}
}

// decodeRoute rebuilds the abstract route for a match of the given kind.
func decodeRoute(k RouteKind, m pattern.Match) (AbstractRoute, error) {
	switch k {
	case KindProfile:
		return decodeProfile(m.Args)
	case KindPost:
		return decodePost(m.Args)
	default:
		return nil, fmt.Errorf("unknown route kind %v", k)
	}
}

func decodeProfile(args map[string]pattern.Value) (Profile, error) {
	var p Profile
	d := flat.NewDecoder(profileSchema, args)
	for {
		i, err := d.Next()
		if err != nil {
			return Profile{}, err
		}
		if i == flat.Done {
			return p, nil
		}
		if i == 0 {
			p.Handle = d.Value().String()
		}
	}
}

func decodePost(args map[string]pattern.Value) (Post, error) {
	var p Post
	d := flat.NewDecoder(postSchema, args)
	for {
		i, err := d.Next()
		if err != nil {
			return Post{}, err
		}
		if i == flat.Done {
			return p, nil
		}
		switch i {
		case 0:
			p.Handle = d.Value().String()
		case 1:
			p.ID = d.Value().String()
		}
	}
}
