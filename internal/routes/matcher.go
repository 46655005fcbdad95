package routes

import (
	"sync"
	"sync/atomic"
)

// ErrorPath is the error-dispatch path. Requests landing there are never
// attributed to a route pattern, even when a pattern would match, so failed
// requests do not pollute per-route latency series.
const ErrorPath = "/error"

// Matcher resolves a request line to the template of the route it matched.
// The full pattern set is gathered from every source exactly once, on first
// use, and shared by all concurrent requests afterwards.
type Matcher struct {
	sources []Source

	mu    sync.Mutex
	cache atomic.Pointer[[]Pattern]
}

// NewMatcher builds a matcher over the given registries. Sources are
// consulted in argument order; when two registries contribute the same
// template, the first one wins.
func NewMatcher(sources ...Source) *Matcher {
	return &Matcher{sources: sources}
}

// Resolve returns the template of the first pattern matching the request,
// or "" when nothing matches or the request hit the error path. An error
// means a registry could not be queried; the cache stays unbuilt and the
// next call retries.
func (m *Matcher) Resolve(method, path string) (string, error) {
	if path == ErrorPath {
		return "", nil
	}
	patterns, err := m.patterns()
	if err != nil {
		return "", err
	}
	for _, p := range patterns {
		if p.Matches(method, path) {
			return p.Template(), nil
		}
	}
	return "", nil
}

// patterns returns the cached pattern set, building it on first use. The
// built pointer is published atomically so the steady-state path is a
// single atomic load; only first-access callers contend on the mutex.
func (m *Matcher) patterns() ([]Pattern, error) {
	if cached := m.cache.Load(); cached != nil {
		return *cached, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached := m.cache.Load(); cached != nil {
		return *cached, nil
	}
	built, err := m.build()
	if err != nil {
		return nil, err
	}
	m.cache.Store(&built)
	return built, nil
}

func (m *Matcher) build() ([]Pattern, error) {
	seen := make(map[string]struct{})
	var all []Pattern
	for _, src := range m.sources {
		patterns, err := src.Patterns()
		if err != nil {
			return nil, err
		}
		for _, p := range patterns {
			if _, dup := seen[p.Template()]; dup {
				continue
			}
			seen[p.Template()] = struct{}{}
			all = append(all, p)
		}
	}
	return all, nil
}
