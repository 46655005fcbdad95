package routes

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource tracks how many times it was queried and can be told to
// fail a number of calls before succeeding.
type countingSource struct {
	patterns []Pattern
	calls    atomic.Int64
	failures atomic.Int64
}

func (s *countingSource) Patterns() ([]Pattern, error) {
	s.calls.Add(1)
	if s.failures.Load() > 0 {
		s.failures.Add(-1)
		return nil, errors.New("registry unavailable")
	}
	return s.patterns, nil
}

func TestMatcherResolvesFirstMatchingPattern(t *testing.T) {
	src := &countingSource{patterns: []Pattern{
		NewPattern("/carts/{customerID}", "GET"),
		NewPattern("/carts/{customerID}/items", "GET", "POST"),
	}}
	m := NewMatcher(src)

	got, err := m.Resolve("GET", "/carts/42")
	require.NoError(t, err)
	assert.Equal(t, "/carts/{customerID}", got)

	got, err = m.Resolve("POST", "/carts/42/items")
	require.NoError(t, err)
	assert.Equal(t, "/carts/{customerID}/items", got)
}

func TestMatcherReturnsEmptyWhenNothingMatches(t *testing.T) {
	src := &countingSource{patterns: []Pattern{NewPattern("/carts/{customerID}")}}
	m := NewMatcher(src)

	got, err := m.Resolve("GET", "/static/logo.png")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatcherExcludesErrorPath(t *testing.T) {
	// Even a registry that explicitly declares the error path must not get
	// observations attributed to it.
	src := &countingSource{patterns: []Pattern{NewPattern(ErrorPath, "GET")}}
	m := NewMatcher(src)

	got, err := m.Resolve("GET", ErrorPath)
	require.NoError(t, err)
	assert.Empty(t, got)
	// The carve-out short-circuits before the cache is consulted.
	assert.Zero(t, src.calls.Load())
}

func TestMatcherDeduplicatesAcrossSources(t *testing.T) {
	first := &countingSource{patterns: []Pattern{NewPattern("/carts/{customerID}", "GET")}}
	second := &countingSource{patterns: []Pattern{
		NewPattern("/carts/{customerID}"),
		NewPattern("/carts/{customerID}/items"),
	}}
	m := NewMatcher(first, second)

	// The duplicate collapses to the first source's entry, which only
	// serves GET; a POST therefore resolves to nothing.
	got, err := m.Resolve("GET", "/carts/42")
	require.NoError(t, err)
	assert.Equal(t, "/carts/{customerID}", got)

	got, err = m.Resolve("POST", "/carts/42")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatcherBuildsCacheExactlyOnce(t *testing.T) {
	src := &countingSource{patterns: []Pattern{NewPattern("/carts/{customerID}", "GET")}}
	m := NewMatcher(src)

	const workers = 32
	start := make(chan struct{})
	results := make([]string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			got, err := m.Resolve("GET", "/carts/42")
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), src.calls.Load())
	for _, got := range results {
		assert.Equal(t, "/carts/{customerID}", got)
	}
}

func TestMatcherRetriesAfterBuildFailure(t *testing.T) {
	src := &countingSource{patterns: []Pattern{NewPattern("/carts/{customerID}", "GET")}}
	src.failures.Store(1)
	m := NewMatcher(src)

	_, err := m.Resolve("GET", "/carts/42")
	require.Error(t, err)

	// The failed build was not cached; the next request rebuilds.
	got, err := m.Resolve("GET", "/carts/42")
	require.NoError(t, err)
	assert.Equal(t, "/carts/{customerID}", got)
	assert.Equal(t, int64(2), src.calls.Load())

	// Once built, further resolutions hit the cache.
	got, err = m.Resolve("GET", "/carts/42")
	require.NoError(t, err)
	assert.Equal(t, "/carts/{customerID}", got)
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestMatcherResolutionIsIdempotent(t *testing.T) {
	static := NewStaticSource()
	static.Register("GET", "/carts/{customerID}")
	m := NewMatcher(static, NewResourceSource(Resource{
		Base:    "/carts/{customerID}/items",
		IDParam: "itemID",
	}))

	for i := 0; i < 10; i++ {
		got, err := m.Resolve("GET", "/carts/42/items/sku-3")
		require.NoError(t, err)
		assert.Equal(t, "/carts/{customerID}/items/{itemID}", got)
	}
}
