package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

// CatalogStore reads the built database and lookup.
type CatalogStore interface {
	ReadDatabase() ([]domain.RawAccident, error)
	LoadGeolocations() (domain.Geolocations, error)
}

// Catalog holds the cleaned accidents and geolocations in memory for the
// HTTP API.
type Catalog struct {
	store  CatalogStore
	logger *slog.Logger

	mu        sync.RWMutex
	accidents []domain.Accident
	geolocs   domain.Geolocations
	loaded    bool
}

// NewCatalog creates an empty catalog. Call Load before serving.
func NewCatalog(store CatalogStore, logger *slog.Logger) *Catalog {
	return &Catalog{store: store, logger: logger}
}

// Load reads data.csv and geolocs.json, replacing the current contents.
func (c *Catalog) Load() error {
	raws, err := c.store.ReadDatabase()
	if err != nil {
		return err
	}
	geolocs, err := c.store.LoadGeolocations()
	if err != nil {
		return err
	}
	accidents := domain.CleanAll(raws, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.accidents = accidents
	c.geolocs = geolocs
	c.loaded = true
	c.logger.Info("catalog loaded", "accidents", len(accidents), "places", len(geolocs))
	return nil
}

// Accidents returns the cleaned accidents, ordered by date.
func (c *Catalog) Accidents() []domain.Accident {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accidents
}

// Geolocations returns the place lookup.
func (c *Catalog) Geolocations() domain.Geolocations {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.geolocs
}

// FlightPaths returns the flight path of every accident whose origin and
// destination are both located.
func (c *Catalog) FlightPaths() *geojson.FeatureCollection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.FlightPaths(c.accidents, c.geolocs)
}

// CheckReadiness returns nil once Load has succeeded.
func (c *Catalog) CheckReadiness(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return errors.New("catalog not loaded")
	}
	return nil
}
