package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/planecrash-geodata/internal/adapter/geocache"
	"github.com/couchcryptid/planecrash-geodata/internal/adapter/here"
	"github.com/couchcryptid/planecrash-geodata/internal/adapter/nominatim"
	"github.com/couchcryptid/planecrash-geodata/internal/config"
	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/pipeline"
)

var geolocateCmd = &cobra.Command{
	Use:   "geolocate",
	Short: "Geocode accident origins and destinations into geolocs.json",
	Long: "Reads each yearly snapshot, cleans it, and geocodes every origin and destination " +
		"not yet located. Progress is saved after each year, so the command can be resumed.",
	RunE: runGeolocate,
}

func init() {
	addYearFlags(geolocateCmd)
	rootCmd.AddCommand(geolocateCmd)
}

func runGeolocate(cmd *cobra.Command, _ []string) error {
	years, err := yearRange(cmd)
	if err != nil {
		return err
	}
	geocoder, err := newGeocoder()
	if err != nil {
		return err
	}

	start := time.Now()
	g := pipeline.NewGeolocator(dataStore(), geocoder, logger)
	geolocs, err := g.Build(cmd.Context(), years)
	if geolocs != nil {
		logger.Info("geolocation finished", "places", len(geolocs),
			"located", geolocs.CountLocated(), "elapsed", time.Since(start).Round(time.Second))
	}
	return err
}

// newGeocoder builds the configured provider behind the LRU cache.
func newGeocoder() (domain.Geocoder, error) {
	var inner domain.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderHERE:
		if err := cfg.RequireHERE(); err != nil {
			return nil, err
		}
		inner = newHEREClient()
	case config.GeocoderNominatim:
		inner = nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimRate,
			cfg.GeocodeTimeout, logger, metrics)
	default:
		return nil, fmt.Errorf("unknown geocoder %q", cfg.Geocoder)
	}
	logger.Info("geocoder ready", "provider", cfg.Geocoder, "cache_size", cfg.GeocodeCacheSize)
	return geocache.New(inner, cfg.GeocodeCacheSize, metrics), nil
}

func newHEREClient() *here.Client {
	return here.NewClient(cfg.HEREAppID, cfg.HEREAppCode, cfg.GeocodeTimeout, cfg.NominatimRate, logger, metrics)
}
