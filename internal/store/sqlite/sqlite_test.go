package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

func intPtr(n int) *int { return &n }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReplaceAccidents(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	accidents := []domain.Accident{
		{
			ID: "1977-20", Date: time.Date(1977, time.March, 27, 0, 0, 0, 0, time.UTC),
			Location: "Tenerife, Canary Islands", LocationCountry: "Canary Islands",
			Operator: "Pan American World Airways / KLM", Origin: "Tenerife", Destination: "Las Palmas",
			Fatalities: domain.Counts{Total: intPtr(583)},
		},
		{
			ID: "1985-36", Date: time.Date(1985, time.August, 12, 0, 0, 0, 0, time.UTC),
			Location: "Mt. Osutaka, Japan", LocationCountry: "Japan",
			Fatalities: domain.Counts{Total: intPtr(520), Passengers: intPtr(505), Crew: intPtr(15)},
		},
		{
			ID: "1985-40", Date: time.Date(1985, time.September, 6, 0, 0, 0, 0, time.UTC),
			LocationCountry: "Japan",
		},
	}
	require.NoError(t, s.ReplaceAccidents(ctx, accidents))
	// Replacing twice must not duplicate rows.
	require.NoError(t, s.ReplaceAccidents(ctx, accidents))

	n, err := s.CountAccidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	totals, err := s.FatalitiesByCountry(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CountryTotal{
		{Country: "Canary Islands", Fatalities: 583},
		{Country: "Japan", Fatalities: 520},
	}, totals)
}

func TestReplaceGeolocations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	g := domain.Geolocations{
		"Bergen":        {Lat: 60.3943532, Lon: 5.325551},
		"Moroni Hahaya": nil,
	}
	require.NoError(t, s.ReplaceGeolocations(ctx, g))

	got, err := s.Geolocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, g, got)

	require.NoError(t, s.ReplaceGeolocations(ctx, domain.Geolocations{"Cairo": {Lat: 30.05, Lon: 31.24}}))
	got, err = s.Geolocations(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "Cairo")
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceAccidents(ctx, []domain.Accident{{ID: "2000-1", LocationCountry: "?"}}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.CountAccidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
