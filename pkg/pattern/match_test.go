package pattern

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
		ok   bool
	}{
		{
			name: "profile",
			raw:  "https://Mastodon.Social/@alice",
			want: Request{Host: "mastodon.social", Segments: []string{"@alice"}, Query: map[string]string{}},
			ok:   true,
		},
		{
			name: "port and query",
			raw:  "http://x.example:8080/alice/status/1/?ref=share&ref=dup",
			want: Request{Host: "x.example", Segments: []string{"alice", "status", "1"}, Query: map[string]string{"ref": "share"}},
			ok:   true,
		},
		{
			name: "surrounding whitespace",
			raw:  "  https://misskey.io/notes/9abc \n",
			want: Request{Host: "misskey.io", Segments: []string{"notes", "9abc"}, Query: map[string]string{}},
			ok:   true,
		},
		{name: "relative", raw: "/@alice"},
		{name: "other scheme", raw: "mailto:alice@example.com"},
		{name: "custom scheme", raw: "flare://profile/alice"},
		{name: "no host", raw: "https:///@alice"},
		{name: "garbage", raw: "http://[::1"},
		{name: "encoded slash", raw: "https://a.b/x%2Fy"},
		{name: "escapes root", raw: "https://a.b/../x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRequest(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseRequest(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRequest(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	post := MustCompile(testPostSchema, "https://mastodon.social/@{handle}/{id}")

	m, ok := post.MatchURL("https://mastodon.social/@alice/109")
	if !ok {
		t.Fatal("expected match")
	}
	if m.SchemaID != "post" {
		t.Errorf("SchemaID = %q", m.SchemaID)
	}
	if len(m.Args) != 2 || m.Args["handle"].String() != "alice" || m.Args["id"].String() != "109" {
		t.Errorf("Args = %v", m.Args)
	}

	misses := []string{
		"https://mastodon.social/@alice",
		"https://mastodon.social/@alice/109/extra",
		"https://mastodon.social/alice/109",
		"https://mastodon.social/@/109",
		"https://other.social/@alice/109",
		"not a url",
		"",
	}
	for _, raw := range misses {
		if _, ok := post.MatchURL(raw); ok {
			t.Errorf("MatchURL(%q) matched, want no match", raw)
		}
	}
}

func TestMatchLiteralIsCaseSensitive(t *testing.T) {
	p := MustCompile(testPostSchema, "https://misskey.io/notes/{id}")
	if _, ok := p.MatchURL("https://misskey.io/Notes/1"); ok {
		t.Error("literal segment matched with different case")
	}
	if _, ok := p.MatchURL("https://MISSKEY.io/notes/1"); !ok {
		t.Error("host comparison should ignore case")
	}
}

func TestMatchQuery(t *testing.T) {
	p := MustCompile(testSearchSchema,
		"https://example.com/search/{page}?q={query}&includeHistory={includeHistory}&src=app")

	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "all present", raw: "https://example.com/search/2?q=go&includeHistory=true&src=app", ok: true},
		{name: "extra param ignored", raw: "https://example.com/search/2?q=go&includeHistory=false&src=app&utm=x", ok: true},
		{name: "missing placeholder", raw: "https://example.com/search/2?includeHistory=true&src=app"},
		{name: "missing literal", raw: "https://example.com/search/2?q=go&includeHistory=true"},
		{name: "wrong literal", raw: "https://example.com/search/2?q=go&includeHistory=true&src=web"},
		{name: "bad bool", raw: "https://example.com/search/2?q=go&includeHistory=yes&src=app"},
		{name: "bad int", raw: "https://example.com/search/two?q=go&includeHistory=true&src=app"},
		{name: "int overflow", raw: "https://example.com/search/99999999999?q=go&includeHistory=true&src=app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := p.MatchURL(tt.raw)
			if ok != tt.ok {
				t.Fatalf("MatchURL(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got := m.Args["page"].Int(); got != 2 {
				t.Errorf("page = %d, want 2", got)
			}
			if got := m.Args["query"].String(); got != "go" {
				t.Errorf("query = %q, want go", got)
			}
			if len(m.Args) != 3 {
				t.Errorf("Args has %d entries, want exactly the 3 placeholders: %v", len(m.Args), m.Args)
			}
		})
	}
}

func TestBuildRoundTrip(t *testing.T) {
	p := MustCompile(testSearchSchema,
		"https://example.com/search/{page}?q={query}&includeHistory={includeHistory}")

	args := map[string]Value{
		"page":           IntValue(3),
		"query":          StringValue("hello world & more"),
		"includeHistory": BoolValue(true),
	}
	raw, err := p.Build(args)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	m, ok := p.MatchURL(raw)
	if !ok {
		t.Fatalf("MatchURL(%q) did not match", raw)
	}
	if !reflect.DeepEqual(m.Args, args) {
		t.Errorf("round trip args = %v, want %v", m.Args, args)
	}
}

func TestBuildErrors(t *testing.T) {
	p := MustCompile(testPostSchema, "https://mastodon.social/@{handle}/{id}")

	_, err := p.Build(map[string]Value{"handle": StringValue("alice")})
	if !errors.Is(err, ErrMissingArgument) {
		t.Errorf("missing id error = %v", err)
	}
	_, err = p.Build(map[string]Value{"handle": StringValue("alice"), "id": LongValue(1)})
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("kind mismatch error = %v", err)
	}
	_, err = p.Build(map[string]Value{"handle": StringValue(""), "id": StringValue("1")})
	if !errors.Is(err, ErrEmptyArgument) {
		t.Errorf("empty handle error = %v", err)
	}
}
