package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vango-dev/deeplink/pkg/deeplink"
)

// RouteView is the wire form of a navigation target.
type RouteView struct {
	Kind    string `json:"kind"`
	Account string `json:"account"`
	Path    string `json:"path"`

	// Profile targets.
	User string `json:"user,omitempty"`

	// Post targets.
	ID     string `json:"id,omitempty"`
	Handle string `json:"handle,omitempty"`

	Host string `json:"host"`
}

// ResolveResponse is the body of GET /resolve and of each WebSocket reply.
type ResolveResponse struct {
	URL    string      `json:"url"`
	Routes []RouteView `json:"routes"`
	Error  string      `json:"error,omitempty"`
}

// PatternView describes one compiled link shape.
type PatternView struct {
	Kind     string `json:"kind"`
	Template string `json:"template"`
}

// AccountPatternsView lists the shapes compiled for one account.
type AccountPatternsView struct {
	Account  string        `json:"account,omitempty"`
	Family   string        `json:"family,omitempty"`
	Patterns []PatternView `json:"patterns"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// routeView converts a navigation target to its wire form.
func routeView(r deeplink.ConcreteRoute) RouteView {
	v := RouteView{
		Kind:    r.Kind().String(),
		Account: r.Account().String(),
		Path:    r.Path(),
	}
	switch r := r.(type) {
	case deeplink.ProfileRoute:
		v.User = r.UserName
		v.Host = r.Host
	case deeplink.PostRoute:
		v.ID = r.Content.ID
		v.Host = r.Content.Host
		v.Handle = r.Handle
	}
	return v
}

// RouteViews converts navigation targets to their wire form. The result
// is never nil.
func RouteViews(routes []deeplink.ConcreteRoute) []RouteView {
	out := make([]RouteView, 0, len(routes))
	for _, r := range routes {
		out = append(out, routeView(r))
	}
	return out
}

func resolveResponse(rawURL string, res *deeplink.Resolution, err error) ResolveResponse {
	if err != nil {
		return ResolveResponse{URL: rawURL, Routes: []RouteView{}, Error: publicError(err)}
	}
	return ResolveResponse{URL: rawURL, Routes: RouteViews(res.Routes)}
}

// publicError hides source internals such as bucket names from clients.
func publicError(err error) string {
	if errors.Is(err, deeplink.ErrAccountSource) {
		return deeplink.ErrAccountSource.Error()
	}
	return "internal error"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
		return
	}

	res, err := s.service.Resolve(r.Context(), rawURL)
	if err != nil {
		s.logger.Error("resolve failed", "error", err)
		writeJSON(w, statusFor(err), resolveResponse(rawURL, res, err))
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse(rawURL, res, nil))
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.Patterns(r.Context())
	if err != nil {
		s.logger.Error("listing patterns failed", "error", err)
		writeJSON(w, statusFor(err), errorResponse{Error: publicError(err)})
		return
	}

	out := make([]AccountPatternsView, 0, len(list))
	for _, ap := range list {
		out = append(out, PatternsView(ap))
	}
	writeJSON(w, http.StatusOK, out)
}

// PatternsView converts the compiled shapes of one account to their wire
// form. Account and Family are empty for a bare family and host listing.
func PatternsView(ap deeplink.AccountPatterns) AccountPatternsView {
	view := AccountPatternsView{
		Patterns: make([]PatternView, 0, len(ap.Entries)),
	}
	if ap.Account.ID != "" {
		view.Account = ap.Account.Key().String()
		view.Family = ap.Account.Family.String()
	}
	for _, e := range ap.Entries {
		view.Patterns = append(view.Patterns, PatternView{
			Kind:     e.Kind.String(),
			Template: e.Pattern.Template(),
		})
	}
	return view
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, deeplink.ErrAccountSource) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
