package deeplink

import (
	"strings"

	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/routepath"
)

// ConcreteRoute is an account-scoped navigation target handed to the
// navigation layer.
type ConcreteRoute interface {
	// Account is the account the target opens under.
	Account() accounts.Key

	// Path is the in-app navigation path of the target.
	Path() string

	Kind() RouteKind
}

// ProfileRoute opens a user profile. Host differs from the account host for
// cross-instance handles.
type ProfileRoute struct {
	AccountKey accounts.Key `json:"account"`
	UserName   string       `json:"userName"`
	Host       string       `json:"host"`
}

// Account implements ConcreteRoute.
func (r ProfileRoute) Account() accounts.Key { return r.AccountKey }

// Kind implements ConcreteRoute.
func (ProfileRoute) Kind() RouteKind { return KindProfile }

// Path implements ConcreteRoute.
func (r ProfileRoute) Path() string {
	return joinPath("profile", r.AccountKey.String(), r.Host, r.UserName)
}

// ContentKey identifies a post on a host.
type ContentKey struct {
	Host string `json:"host"`
	ID   string `json:"id"`
}

// PostRoute opens a single post. Handle is informational; the content is
// identified by Content alone.
type PostRoute struct {
	AccountKey accounts.Key `json:"account"`
	Content    ContentKey   `json:"content"`
	Handle     string       `json:"handle,omitempty"`
}

// Account implements ConcreteRoute.
func (r PostRoute) Account() accounts.Key { return r.AccountKey }

// Kind implements ConcreteRoute.
func (PostRoute) Kind() RouteKind { return KindPost }

// Path implements ConcreteRoute.
func (r PostRoute) Path() string {
	return joinPath("post", r.AccountKey.String(), r.Content.Host, r.Content.ID)
}

// Materialize turns an abstract route into a navigation target owned by
// the account key. The account host is key.Host.
func Materialize(key accounts.Key, route AbstractRoute) ConcreteRoute {
	switch r := route.(type) {
	case Profile:
		user, host := splitHandle(r.Handle, key.Host)
		return ProfileRoute{AccountKey: key, UserName: user, Host: host}
	case Post:
		return PostRoute{
			AccountKey: key,
			Content:    ContentKey{Host: key.Host, ID: r.ID},
			Handle:     r.Handle,
		}
	default:
		return nil
	}
}

// splitHandle splits "user@host" on the first '@'. A single leading '@' is
// ignored and a missing host falls back to the account host.
func splitHandle(handle, accountHost string) (user, host string) {
	handle = strings.TrimPrefix(handle, "@")
	user, host, found := strings.Cut(handle, "@")
	if !found || host == "" {
		return user, accountHost
	}
	return user, strings.ToLower(host)
}

func joinPath(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(routepath.EscapeSegment(p))
	}
	return b.String()
}
