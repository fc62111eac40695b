package geocache

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/observability"
)

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) Geocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 60.39, Lon: 5.32, DisplayName: "Bergen, Vestland, Norway"},
	}
	metrics := observability.NewMetricsForTesting()
	cached := New(inner, 10, metrics)

	r1, err := cached.Geocode(context.Background(), "Bergen")
	require.NoError(t, err)
	assert.Equal(t, "Bergen, Vestland, Norway", r1.DisplayName)

	r2, err := cached.Geocode(context.Background(), "  bergen ")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{DisplayName: "Place"}}
	cached := New(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Geocode(context.Background(), "Bergen")
	_, _ = cached.Geocode(context.Background(), "Oslo")

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedGeocoder_NotFoundNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := New(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Geocode(context.Background(), "Nowhere")
	_, _ = cached.Geocode(context.Background(), "Nowhere")

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.Len())
}

func TestCachedGeocoder_ErrorPassesThrough(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := New(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Geocode(context.Background(), "Bergen")
	require.Error(t, err)
	assert.Equal(t, 0, cached.Len())
}

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.GeocodingResult{DisplayName: "A"})
	c.put("b", domain.GeocodingResult{DisplayName: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.DisplayName)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{DisplayName: "A"})
	c.put("b", domain.GeocodingResult{DisplayName: "B"})
	c.put("c", domain.GeocodingResult{DisplayName: "C"})

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result.DisplayName)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{DisplayName: "A"})
	c.put("b", domain.GeocodingResult{DisplayName: "B"})
	c.get("a")
	c.put("c", domain.GeocodingResult{DisplayName: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{DisplayName: "A1"})
	c.put("a", domain.GeocodingResult{DisplayName: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.DisplayName)
	assert.Equal(t, 1, c.len())
}
