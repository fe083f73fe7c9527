package deeplink

import (
	"reflect"
	"sync"
	"testing"

	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/pattern"
	"github.com/vango-dev/deeplink/pkg/platform"
)

func newTestResolver() *Resolver {
	return NewResolver(NewRegistry(NewMemoryCache()))
}

func TestResolveScenarios(t *testing.T) {
	tests := []struct {
		name    string
		account accounts.Account
		url     string
		want    AbstractRoute
	}{
		{
			name:    "mastodon profile",
			account: accounts.Account{ID: "1", Host: "mastodon.social", Family: platform.Mastodon},
			url:     "https://mastodon.social/@alice",
			want:    Profile{Handle: "alice"},
		},
		{
			name:    "mastodon post",
			account: accounts.Account{ID: "1", Host: "mastodon.social", Family: platform.Mastodon},
			url:     "https://mastodon.social/@alice/109",
			want:    Post{Handle: "alice", ID: "109"},
		},
		{
			name:    "misskey note",
			account: accounts.Account{ID: "1", Host: "misskey.example", Family: platform.Misskey},
			url:     "https://misskey.example/notes/12345",
			want:    Post{ID: "12345"},
		},
		{
			name:    "bluesky post",
			account: accounts.Account{ID: "1", Host: "bsky.example", Family: platform.Bluesky},
			url:     "https://bsky.example/profile/alice.bsky.social/post/12345",
			want:    Post{Handle: "alice.bsky.social", ID: "12345"},
		},
		{
			name:    "bluesky profile",
			account: accounts.Account{ID: "1", Host: "bsky.example", Family: platform.Bluesky},
			url:     "https://bsky.example/profile/alice.bsky.social",
			want:    Profile{Handle: "alice.bsky.social"},
		},
		{
			name:    "x status",
			account: accounts.Account{ID: "1", Host: "x.example", Family: platform.X},
			url:     "https://x.example/alice/status/12345",
			want:    Post{Handle: "alice", ID: "12345"},
		},
		{
			name:    "x profile",
			account: accounts.Account{ID: "1", Host: "x.example", Family: platform.X},
			url:     "https://x.example/alice",
			want:    Profile{Handle: "alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestResolver().Resolve(tt.url, []accounts.Account{tt.account})
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			want := map[accounts.Key]AbstractRoute{tt.account.Key(): tt.want}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Resolve(%q) = %#v, want %#v", tt.url, got, want)
			}
		})
	}
}

func TestResolveNoMatch(t *testing.T) {
	list := []accounts.Account{
		{ID: "1", Host: "mastodon.social", Family: platform.Mastodon},
		{ID: "2", Host: "weibo.example", Family: platform.VVO},
	}
	urls := []string{
		"https://example.com/@alice",
		"https://mastodon.social/",
		"https://mastodon.social/@alice/1/2",
		"https://mastodon.social/about",
		"https://weibo.example/anything",
		"mailto:alice@mastodon.social",
		"not a link",
		"",
	}

	r := newTestResolver()
	for _, u := range urls {
		got, err := r.Resolve(u, list)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", u, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Resolve(%q) = %v, want empty map", u, got)
		}
	}
}

func TestResolveSharedHostFanOut(t *testing.T) {
	a := accounts.Account{ID: "1", Host: "mastodon.social", Family: platform.Mastodon}
	b := accounts.Account{ID: "2", Host: "mastodon.social", Family: platform.Mastodon}
	other := accounts.Account{ID: "3", Host: "misskey.io", Family: platform.Misskey}

	cache := NewMemoryCache()
	r := NewResolver(NewRegistry(cache))

	got, err := r.Resolve("https://mastodon.social/@alice/1", []accounts.Account{a, b, other})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Resolve() = %v, want two entries", got)
	}
	if !reflect.DeepEqual(got[a.Key()], got[b.Key()]) {
		t.Errorf("payloads differ: %v vs %v", got[a.Key()], got[b.Key()])
	}
	if _, ok := got[other.Key()]; ok {
		t.Error("misskey account must not match a mastodon host")
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d bindings, want 2 (shared host compiled once)", cache.Len())
	}
}

func TestRoundTripAllFamilies(t *testing.T) {
	hosts := []string{"example.com", "social.example.org"}
	families := []platform.Family{platform.Mastodon, platform.Misskey, platform.Bluesky, platform.X}
	reg := NewRegistry(nil)

	for _, f := range families {
		for _, host := range hosts {
			entries, err := reg.Patterns(f, host)
			if err != nil {
				t.Fatalf("Patterns(%v, %s) error: %v", f, host, err)
			}
			if len(entries) != 2 || entries[0].Kind != KindProfile || entries[1].Kind != KindPost {
				t.Fatalf("Patterns(%v) kinds = %v", f, entries)
			}

			for _, e := range entries {
				args := map[string]pattern.Value{"id": pattern.StringValue("987654")}
				for _, name := range e.Pattern.Placeholders() {
					if name == "handle" {
						args["handle"] = pattern.StringValue("carol")
					}
				}
				raw, err := e.Pattern.Build(args)
				if err != nil {
					t.Fatalf("%v %v Build() error: %v", f, e.Kind, err)
				}

				m, ok := e.Pattern.MatchURL(raw)
				if !ok {
					t.Fatalf("%v %v: own URL %q did not match", f, e.Kind, raw)
				}
				route, err := decodeRoute(e.Kind, m)
				if err != nil {
					t.Fatalf("decodeRoute() error: %v", err)
				}
				switch r := route.(type) {
				case Profile:
					if r.Handle != "carol" {
						t.Errorf("%v profile handle = %q", f, r.Handle)
					}
				case Post:
					if r.ID != "987654" {
						t.Errorf("%v post id = %q", f, r.ID)
					}
					if _, hasHandle := args["handle"]; hasHandle && r.Handle != "carol" {
						t.Errorf("%v post handle = %q", f, r.Handle)
					}
				}
			}
		}
	}
}

func TestSegmentCountDiscrimination(t *testing.T) {
	reg := NewRegistry(nil)
	for _, f := range []platform.Family{platform.Mastodon, platform.Misskey, platform.Bluesky, platform.X} {
		entries, err := reg.Patterns(f, "example.com")
		if err != nil {
			t.Fatal(err)
		}
		profile, post := entries[0].Pattern, entries[1].Pattern

		postURL, err := post.Build(map[string]pattern.Value{
			"handle": pattern.StringValue("dave"),
			"id":     pattern.StringValue("1"),
		})
		if err != nil {
			t.Fatal(err)
		}
		profileURL, err := profile.Build(map[string]pattern.Value{"handle": pattern.StringValue("dave")})
		if err != nil {
			t.Fatal(err)
		}

		if _, ok := profile.MatchURL(postURL); ok {
			t.Errorf("%v: profile pattern matched post URL %q", f, postURL)
		}
		if _, ok := post.MatchURL(profileURL); ok {
			t.Errorf("%v: post pattern matched profile URL %q", f, profileURL)
		}
	}
}

func TestQuerySupersetTolerance(t *testing.T) {
	list := []accounts.Account{{ID: "1", Host: "mastodon.social", Family: platform.Mastodon}}
	r := newTestResolver()

	plain, _ := r.Resolve("https://mastodon.social/@alice/42", list)
	extra, _ := r.Resolve("https://mastodon.social/@alice/42?utm_source=share&s=20", list)
	if !reflect.DeepEqual(plain, extra) || len(plain) != 1 {
		t.Errorf("undeclared query changed outcome: %v vs %v", plain, extra)
	}
}

func TestRegistryVVOHasNoPatterns(t *testing.T) {
	entries, err := NewRegistry(nil).Patterns(platform.VVO, "m.weibo.cn")
	if err != nil {
		t.Fatalf("Patterns() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("VVO entries = %v, want none", entries)
	}
}

func TestRegistryStructuralError(t *testing.T) {
	var hooked []error
	reg := NewRegistry(nil, WithCompileHook(func(_ Binding, err error) {
		hooked = append(hooked, err)
	}))

	// A host that breaks the template must never reach the resolver in
	// practice; accounts.Validate rejects it. The registry still reports it.
	_, err := reg.Patterns(platform.Mastodon, "{oops}")
	if err == nil {
		t.Fatal("expected structural error")
	}
	if len(hooked) != 1 || hooked[0] == nil {
		t.Errorf("compile hook saw %v", hooked)
	}

	err = reg.Prepare([]accounts.Account{{ID: "1", Host: "{oops}", Family: platform.Mastodon}})
	if err == nil {
		t.Error("Prepare() should surface the structural error")
	}
}

func TestResolveStructuralErrorDropsMatches(t *testing.T) {
	list := []accounts.Account{
		{ID: "1", Host: "mastodon.social", Family: platform.Mastodon},
		{ID: "2", Host: "{oops}", Family: platform.Mastodon},
	}

	got, err := newTestResolver().Resolve("https://mastodon.social/@alice", list)
	if err == nil {
		t.Fatal("expected structural error")
	}
	if got != nil {
		t.Errorf("Resolve() = %v, want nil on error", got)
	}
}

func TestRegistryConcurrentCompile(t *testing.T) {
	var mu sync.Mutex
	compiles := 0
	reg := NewRegistry(NewMemoryCache(), WithCompileHook(func(Binding, error) {
		mu.Lock()
		compiles++
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	results := make([][]Entry, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries, err := reg.Patterns(platform.Bluesky, "bsky.app")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = entries
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i][0].Pattern != results[0][0].Pattern {
			t.Fatal("callers observed different cached pattern lists")
		}
	}
	if compiles < 1 {
		t.Error("expected at least one compilation")
	}
}

func TestDecodeRouteUnknownKind(t *testing.T) {
	if _, err := decodeRoute(RouteKind(9), pattern.Match{}); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := decodeRoute(KindPost, pattern.Match{Args: map[string]pattern.Value{}}); err == nil {
		t.Error("post without id should fail")
	}
}
