package deeplink

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/pattern"
	"github.com/vango-dev/deeplink/pkg/platform"
)

// Entry is one compiled link shape of a binding.
type Entry struct {
	Kind    RouteKind
	Pattern *pattern.Pattern
}

// Binding identifies a cached pattern list. Accounts on the same host and
// family share one.
type Binding struct {
	Family platform.Family
	Host   string
}

// String returns "family:host".
func (b Binding) String() string {
	return b.Family.String() + ":" + b.Host
}

// PatternCache stores compiled pattern lists per binding. Implementations
// must be safe for concurrent use. Two callers may compile the same binding
// at once; LoadOrStore keeps the first list stored.
type PatternCache interface {
	Load(b Binding) ([]Entry, bool)
	LoadOrStore(b Binding, entries []Entry) []Entry
}

// MemoryCache is a PatternCache backed by sync.Map.
type MemoryCache struct {
	m sync.Map
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Load implements PatternCache.
func (c *MemoryCache) Load(b Binding) ([]Entry, bool) {
	v, ok := c.m.Load(b)
	if !ok {
		return nil, false
	}
	return v.([]Entry), true
}

// LoadOrStore implements PatternCache.
func (c *MemoryCache) LoadOrStore(b Binding, entries []Entry) []Entry {
	v, _ := c.m.LoadOrStore(b, entries)
	return v.([]Entry)
}

// Len returns the number of cached bindings.
func (c *MemoryCache) Len() int {
	n := 0
	c.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// CompileHook is called each time a binding's patterns are compiled,
// including duplicate concurrent compilations.
type CompileHook func(b Binding, err error)

// Registry builds and caches the pattern lists of each binding.
type Registry struct {
	cache     PatternCache
	onCompile CompileHook
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCompileHook sets a hook observing pattern compilation.
func WithCompileHook(h CompileHook) RegistryOption {
	return func(r *Registry) {
		r.onCompile = h
	}
}

// NewRegistry returns a registry over cache. A nil cache gets a fresh
// MemoryCache.
func NewRegistry(cache PatternCache, opts ...RegistryOption) *Registry {
	if cache == nil {
		cache = NewMemoryCache()
	}
	r := &Registry{cache: cache}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Patterns returns the ordered pattern list for a family and host,
// compiling it on first use. Profile precedes Post. Families without
// canonical URLs have an empty list.
//
// An error means the static shape table produced an invalid template.
func (r *Registry) Patterns(family platform.Family, host string) ([]Entry, error) {
	b := Binding{Family: family, Host: strings.ToLower(host)}
	if entries, ok := r.cache.Load(b); ok {
		return entries, nil
	}

	entries, err := compileBinding(b)
	if r.onCompile != nil {
		r.onCompile(b, err)
	}
	if err != nil {
		return nil, err
	}
	return r.cache.LoadOrStore(b, entries), nil
}

// Prepare compiles the pattern lists of every account up front so that
// structural errors surface when accounts are loaded.
func (r *Registry) Prepare(list []accounts.Account) error {
	for _, a := range list {
		if _, err := r.Patterns(a.Family, a.Host); err != nil {
			return fmt.Errorf("account %s: %w", a.Key(), err)
		}
	}
	return nil
}

func compileBinding(b Binding) ([]Entry, error) {
	shapes := platform.ShapesFor(b.Family)
	entries := make([]Entry, 0, 2)
	for _, shape := range []struct {
		kind     RouteKind
		template string
	}{
		{KindProfile, shapes.Profile},
		{KindPost, shapes.Post},
	} {
		if shape.template == "" {
			continue
		}
		p, err := pattern.Compile(schemaFor(shape.kind), platform.Expand(shape.template, b.Host))
		if err != nil {
			return nil, fmt.Errorf("binding %s %s: %w", b, shape.kind, err)
		}
		entries = append(entries, Entry{Kind: shape.kind, Pattern: p})
	}
	return entries, nil
}
