package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/middleware"
	"github.com/vango-dev/deeplink/pkg/platform"
)

var testAccounts = accounts.Static{
	{ID: "1", Host: "mastodon.social", Family: platform.Mastodon},
	{ID: "2", Host: "mastodon.social", Family: platform.Mastodon},
	{ID: "3", Host: "bsky.app", Family: platform.Bluesky},
	{ID: "4", Host: "m.weibo.cn", Family: platform.VVO},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, src accounts.Source, opts ...Option) *Server {
	t.Helper()
	svc := deeplink.NewService(src, deeplink.WithLogger(quietLogger()))
	return New(svc, nil, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, testAccounts), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestResolveEndpoint(t *testing.T) {
	s := newTestServer(t, testAccounts)

	tests := []struct {
		name       string
		link       string
		wantStatus int
		wantRoutes []RouteView
	}{
		{
			name:       "cross-host profile on shared host",
			link:       "https://mastodon.social/@bob@misskey.io",
			wantStatus: http.StatusOK,
			wantRoutes: []RouteView{
				{Kind: "profile", Account: "1@mastodon.social", Path: "/profile/1@mastodon.social/misskey.io/bob", User: "bob", Host: "misskey.io"},
				{Kind: "profile", Account: "2@mastodon.social", Path: "/profile/2@mastodon.social/misskey.io/bob", User: "bob", Host: "misskey.io"},
			},
		},
		{
			name:       "bluesky post",
			link:       "https://bsky.app/profile/alice.bsky.social/post/3k",
			wantStatus: http.StatusOK,
			wantRoutes: []RouteView{
				{Kind: "post", Account: "3@bsky.app", Path: "/post/3@bsky.app/bsky.app/3k", ID: "3k", Handle: "alice.bsky.social", Host: "bsky.app"},
			},
		},
		{
			name:       "no match",
			link:       "https://example.com/hello",
			wantStatus: http.StatusOK,
			wantRoutes: []RouteView{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/resolve?url="+escapeQuery(tt.link))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var got ResolveResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.URL != tt.link {
				t.Errorf("url = %q", got.URL)
			}
			if len(got.Routes) != len(tt.wantRoutes) {
				t.Fatalf("routes = %+v, want %+v", got.Routes, tt.wantRoutes)
			}
			for i := range got.Routes {
				if got.Routes[i] != tt.wantRoutes[i] {
					t.Errorf("routes[%d] = %+v, want %+v", i, got.Routes[i], tt.wantRoutes[i])
				}
			}
		})
	}
}

func TestResolveEndpointMissingURL(t *testing.T) {
	rec := get(t, newTestServer(t, testAccounts), "/resolve")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestResolveEndpointSourceFailure(t *testing.T) {
	src := accounts.SourceFunc(func(context.Context) ([]accounts.Account, error) {
		return nil, errors.New("s3://secret-bucket/accounts.json: access denied")
	})
	rec := get(t, newTestServer(t, src), "/resolve?url=https://mastodon.social/@a")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-bucket") {
		t.Errorf("response leaks source details: %s", rec.Body.String())
	}
}

func TestPatternsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, testAccounts), "/patterns")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []AccountPatternsView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d accounts", len(got))
	}
	first := got[0]
	if first.Account != "1@mastodon.social" || first.Family != "mastodon" || len(first.Patterns) != 2 {
		t.Errorf("first = %+v", first)
	}
	if first.Patterns[0].Template != "https://mastodon.social/@{handle}" {
		t.Errorf("profile template = %q", first.Patterns[0].Template)
	}
	if len(got[3].Patterns) != 0 {
		t.Errorf("vvo patterns = %+v", got[3].Patterns)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(middleware.WithRegistry(reg))
	svc := deeplink.NewService(testAccounts,
		deeplink.WithLogger(quietLogger()),
		deeplink.WithMiddleware(m.Middleware()),
	)
	s := New(svc, nil, WithLogger(quietLogger()), WithGatherer(reg))

	get(t, s, "/resolve?url=https://mastodon.social/@alice")
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `deeplink_resolutions_total{outcome="matched"} 1`) {
		t.Errorf("metrics body missing resolution counter:\n%s", rec.Body.String())
	}

	disabled := New(svc, &Config{MetricsPath: ""}, WithLogger(quietLogger()), WithGatherer(reg))
	if rec := get(t, disabled, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("disabled metrics status = %d, want 404", rec.Code)
	}
}

func TestMountInChi(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/links", newTestServer(t, testAccounts).Handler())

	rec := get(t, r, "/links/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("mounted healthz status = %d", rec.Code)
	}
}

func TestWebSocketStream(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testAccounts))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	frames := []struct {
		send       string
		wantRoutes int
		wantError  bool
	}{
		{send: "https://mastodon.social/@alice/109", wantRoutes: 2},
		{send: `{"url":"https://bsky.app/profile/alice.bsky.social"}`, wantRoutes: 1},
		{send: "https://example.com/", wantRoutes: 0},
		{send: `{"nope":true}`, wantError: true},
	}

	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f.send)); err != nil {
			t.Fatalf("WriteMessage() error: %v", err)
		}
		var reply ResolveResponse
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("ReadJSON() error: %v", err)
		}
		if len(reply.Routes) != f.wantRoutes {
			t.Errorf("%s: %d routes, want %d", f.send, len(reply.Routes), f.wantRoutes)
		}
		if (reply.Error != "") != f.wantError {
			t.Errorf("%s: error = %q", f.send, reply.Error)
		}
	}
}

func TestWebSocketRejectsCrossOrigin(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testAccounts))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("cross-origin dial should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	c := (&Config{Address: ":9000"}).withDefaults()
	if c.Address != ":9000" || c.ShutdownTimeout == 0 || c.CheckOrigin == nil {
		t.Errorf("withDefaults() = %+v", c)
	}
	if c.MetricsPath != "" {
		t.Errorf("explicit config should keep metrics disabled, got %q", c.MetricsPath)
	}
	if err := (&Config{MetricsPath: "metrics"}).Validate(); !errors.Is(err, ErrInvalidMetricsPath) {
		t.Errorf("Validate() = %v, want ErrInvalidMetricsPath", err)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "links.example", true},
		{"https://links.example", "links.example", true},
		{"https://evil.example", "links.example", false},
		{"://bad", "links.example", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = tt.host
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := SameOriginCheck(r); got != tt.want {
			t.Errorf("SameOriginCheck(origin=%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func escapeQuery(s string) string {
	return strings.NewReplacer("?", "%3F", "&", "%26", "#", "%23").Replace(s)
}
