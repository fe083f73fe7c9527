package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Address is the listen address (default ":8080").
	Address string

	// MetricsPath is where Prometheus metrics are served.
	// Empty disables the metrics endpoint.
	MetricsPath string

	// CheckOrigin validates WebSocket origins.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxMessageSize bounds a single WebSocket message. Links are short.
	MaxMessageSize int64

	// WSIdleTimeout closes WebSocket connections with no traffic.
	WSIdleTimeout time.Duration

	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		MetricsPath:       "/metrics",
		CheckOrigin:       SameOriginCheck, // SECURE DEFAULT: reject cross-origin
		ReadBufferSize:    1024,
		WriteBufferSize:   4096,
		MaxMessageSize:    8 * 1024,
		WSIdleTimeout:     5 * time.Minute,
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.WSIdleTimeout == 0 {
		out.WSIdleTimeout = defaults.WSIdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	return &out
}

// ErrInvalidMetricsPath is returned when MetricsPath is not absolute.
var ErrInvalidMetricsPath = errors.New("server: metrics path must start with '/'")

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return ErrInvalidMetricsPath
	}
	return nil
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
// Requests without an Origin header (curl, native shells) are allowed.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}
