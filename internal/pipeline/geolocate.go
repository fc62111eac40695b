package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

// GeoStore reads snapshots and persists the geolocation lookup.
type GeoStore interface {
	ReadYear(year int) ([]domain.RawAccident, error)
	LoadGeolocations() (domain.Geolocations, error)
	SaveGeolocations(g domain.Geolocations) error
}

// Geolocator builds the place lookup year by year.
type Geolocator struct {
	store    GeoStore
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewGeolocator creates a Geolocator.
func NewGeolocator(store GeoStore, geocoder domain.Geocoder, logger *slog.Logger) *Geolocator {
	return &Geolocator{store: store, geocoder: geocoder, logger: logger}
}

// Geolocate adds the origins and destinations of accidents to previous.
func (g *Geolocator) Geolocate(ctx context.Context, accidents []domain.Accident, previous domain.Geolocations) domain.Geolocations {
	return domain.Geolocate(ctx, accidents, previous, g.geocoder, g.logger)
}

// Build starts from the saved lookup, then cleans and geolocates each year
// in turn, saving after every year so an interrupted run keeps its progress.
func (g *Geolocator) Build(ctx context.Context, years []int) (domain.Geolocations, error) {
	geolocs, err := g.store.LoadGeolocations()
	if err != nil {
		return nil, err
	}
	g.logger.Info("starting geolocation", "known_places", len(geolocs))

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return geolocs, err
		}
		raws, err := g.store.ReadYear(year)
		if errors.Is(err, fs.ErrNotExist) {
			g.logger.Warn("year snapshot missing, skipping", "year", year)
			continue
		}
		if err != nil {
			return geolocs, err
		}

		accidents := domain.CleanAll(raws, g.logger)
		geolocs = g.Geolocate(ctx, accidents, geolocs)
		if err := g.store.SaveGeolocations(geolocs); err != nil {
			return geolocs, err
		}
		g.logger.Info("geolocations saved", "year", year,
			"places", len(geolocs), "located", geolocs.CountLocated())
	}
	return geolocs, ctx.Err()
}
