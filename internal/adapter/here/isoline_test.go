package here

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

func isolineServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "geo!52.5,13.4", q.Get("start"))
		assert.Equal(t, "distance", q.Get("rangetype"))
		assert.Equal(t, "fastest;car;traffic:disabled", q.Get("mode"))
		// ring size grows with the range so tests can tell responses apart
		d := q.Get("range")
		_, _ = fmt.Fprintf(w, `{"response":{"isoline":[{"component":[{"shape":["52.5,13.4","52.6,13.4","52.6,13.5","0.00%s,0"]}]}]}}`, d)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestIsoline_DrawReplacesPrevious(t *testing.T) {
	srv, calls := isolineServer(t)
	layer := NewFeatureLayer()
	iso := testClient(srv.URL).NewIsoline(domain.LatLon{Lat: 52.5, Lon: 13.4}, layer, nil)

	f1, err := iso.Draw(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, f1.Properties["range_m"])
	require.Len(t, layer.Collection().Features, 1)

	f2, err := iso.Draw(context.Background(), 2000)
	require.NoError(t, err)
	fc := layer.Collection()
	require.Len(t, fc.Features, 1)
	assert.Same(t, f2, fc.Features[0])
	assert.Equal(t, int32(2), calls.Load())
}

func TestIsoline_CachesByRange(t *testing.T) {
	srv, calls := isolineServer(t)
	iso := testClient(srv.URL).NewIsoline(domain.LatLon{Lat: 52.5, Lon: 13.4}, NewFeatureLayer(), nil)

	for range 3 {
		_, err := iso.Draw(context.Background(), 500)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsoline_RingClosed(t *testing.T) {
	srv, _ := isolineServer(t)
	iso := testClient(srv.URL).NewIsoline(domain.LatLon{Lat: 52.5, Lon: 13.4}, NewFeatureLayer(), nil)

	r, err := iso.Ring(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, r, 5)
	assert.Equal(t, orb.Point{13.4, 52.5}, r[0])
	assert.Equal(t, orb.Point{13.4, 52.6}, r[1])
	assert.True(t, r.Closed())
}

func TestIsoline_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"response":{"isoline":[]}}`)
	}))
	defer srv.Close()

	layer := NewFeatureLayer()
	iso := testClient(srv.URL).NewIsoline(domain.LatLon{}, layer, nil)
	_, err := iso.Draw(context.Background(), 1000)
	require.Error(t, err)
	assert.Empty(t, layer.Collection().Features)
}

func TestParseShape_Invalid(t *testing.T) {
	_, err := parseShape([]string{"52.5;13.4"})
	require.Error(t, err)
	_, err = parseShape([]string{"abc,13.4"})
	require.Error(t, err)
}
