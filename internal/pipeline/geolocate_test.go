package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/pipeline"
	"github.com/couchcryptid/planecrash-geodata/internal/store/csvdb"
)

type mapGeocoder struct {
	places  map[string]domain.LatLon
	queries []string
}

func (m *mapGeocoder) Geocode(_ context.Context, place string) (domain.GeocodingResult, error) {
	m.queries = append(m.queries, place)
	ll, ok := m.places[place]
	if !ok {
		return domain.GeocodingResult{}, nil
	}
	return domain.GeocodingResult{Lat: ll.Lat, Lon: ll.Lon, DisplayName: place}, nil
}

func rawAccident(year, num int, date, route string) domain.RawAccident {
	return domain.RawAccident{
		Year: year, Number: num, Date: date, Route: route,
		Location: "Somewhere, Norway", Fatalities: "1", ScrapedAt: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestGeolocator_Build(t *testing.T) {
	store := csvdb.New(t.TempDir(), discardLogger())
	require.NoError(t, store.WriteYear(1950, []domain.RawAccident{
		rawAccident(1950, 1, "March 12, 1950", "Bergen - Oslo"),
		rawAccident(1950, 2, "April 2, 1950", "Training"),
		rawAccident(1950, 3, "bad date", "Nowhere - Elsewhere"),
	}))
	require.NoError(t, store.WriteYear(1952, []domain.RawAccident{
		rawAccident(1952, 1, "May 5, 1952", "Oslo - Atlantis"),
	}))
	require.NoError(t, store.SaveGeolocations(domain.Geolocations{
		"Oslo": {Lat: 59.91, Lon: 10.75},
	}))

	geocoder := &mapGeocoder{places: map[string]domain.LatLon{
		"Bergen": {Lat: 60.39, Lon: 5.32},
		"Oslo":   {Lat: 0, Lon: 0},
	}}
	g := pipeline.NewGeolocator(store, geocoder, discardLogger())

	geolocs, err := g.Build(context.Background(), []int{1950, 1951, 1952})
	require.NoError(t, err)

	assert.Equal(t, domain.Geolocations{
		"Bergen":   {Lat: 60.39, Lon: 5.32},
		"Oslo":     {Lat: 59.91, Lon: 10.75},
		"Atlantis": nil,
	}, geolocs)
	// Oslo was known already, Training is ignored, the bad-date row is dropped.
	assert.ElementsMatch(t, []string{"Bergen", "Atlantis"}, geocoder.queries)

	saved, err := store.LoadGeolocations()
	require.NoError(t, err)
	assert.Equal(t, geolocs, saved)
}

func TestGeolocator_Build_Cancelled(t *testing.T) {
	store := csvdb.New(t.TempDir(), discardLogger())
	g := pipeline.NewGeolocator(store, &mapGeocoder{}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Build(ctx, []int{2000})
	require.ErrorIs(t, err, context.Canceled)
}
