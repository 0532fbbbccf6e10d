package nominatim

import (
	"context"
	"testing"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
	"github.com/couchcryptid/climate-impact-explorer/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	forwardCalls int
	reverseCalls int
	forward      domain.ForwardResult
	reverse      domain.ReverseResult
}

func (m *countingGeocoder) Search(_ context.Context, _ string) (domain.ForwardResult, error) {
	m.forwardCalls++
	return m.forward, nil
}

func (m *countingGeocoder) Reverse(_ context.Context, _, _ float64) (domain.ReverseResult, error) {
	m.reverseCalls++
	return m.reverse, nil
}

func newCached(inner domain.Geocoder, size int) *CachedGeocoder {
	return NewCachedGeocoder(inner, size, observability.NewMetricsForTesting())
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_ForwardCacheHit(t *testing.T) {
	inner := &countingGeocoder{
		forward: domain.ForwardResult{Lat: -1.28, Lon: 36.82, DisplayName: "Nairobi, Kenya", Country: "Kenya"},
	}
	cached := newCached(inner, 10)

	r1, err := cached.Search(context.Background(), "Nairobi")
	require.NoError(t, err)
	assert.Equal(t, "Kenya", r1.Country)

	r2, err := cached.Search(context.Background(), "Nairobi")
	require.NoError(t, err)
	assert.Equal(t, "Kenya", r2.Country)

	assert.Equal(t, 1, inner.forwardCalls, "should only call inner once")
}

func TestCachedGeocoder_ForwardKeyIsCaseInsensitive(t *testing.T) {
	inner := &countingGeocoder{forward: domain.ForwardResult{DisplayName: "Nairobi, Kenya"}}
	cached := newCached(inner, 10)

	_, _ = cached.Search(context.Background(), "Nairobi")
	_, _ = cached.Search(context.Background(), "  NAIROBI ")

	assert.Equal(t, 1, inner.forwardCalls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{forward: domain.ForwardResult{}}
	cached := newCached(inner, 10)

	_, _ = cached.Search(context.Background(), "Nairobi")
	_, _ = cached.Search(context.Background(), "Nairobi")

	assert.Equal(t, 2, inner.forwardCalls, "empty results must be retried")
}

func TestCachedGeocoder_ReverseCacheHit(t *testing.T) {
	inner := &countingGeocoder{reverse: domain.ReverseResult{Country: "Kenya"}}
	cached := newCached(inner, 10)

	_, err := cached.Reverse(context.Background(), -1.2832533, 36.8172449)
	require.NoError(t, err)
	_, err = cached.Reverse(context.Background(), -1.2832533, 36.8172449)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.reverseCalls, "should only call inner once")
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{forward: domain.ForwardResult{DisplayName: "x"}}
	cached := newCached(inner, 10)

	_, _ = cached.Search(context.Background(), "Nairobi")
	_, _ = cached.Search(context.Background(), "Lagos")

	assert.Equal(t, 2, inner.forwardCalls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", "A")
	c.put("b", "B")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "A")
	c.put("b", "B")
	_, _ = c.get("a") // promote a; b becomes LRU
	c.put("c", "C")   // evicts b

	_, ok := c.get("a")
	assert.True(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "A1")
	c.put("a", "A2")

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", v)
}
