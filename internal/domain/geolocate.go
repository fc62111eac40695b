package domain

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
)

// Geolocations maps a place name to its coordinate. A nil value records a
// place that was looked up without success.
type Geolocations map[string]*LatLon

// Located reports whether place has a non-nil coordinate.
func (g Geolocations) Located(place string) bool {
	return g[place] != nil
}

// CountLocated returns the number of places with a coordinate.
func (g Geolocations) CountLocated() int {
	n := 0
	for _, v := range g {
		if v != nil {
			n++
		}
	}
	return n
}

// Places returns the place names in sorted order.
func (g Geolocations) Places() []string {
	out := make([]string, 0, len(g))
	for k := range g {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// IgnoredPlaces are route entries that describe a flight purpose rather than
// a place, so geocoding them would produce nonsense.
var IgnoredPlaces = map[string]bool{
	"Sightseeing":         true,
	"Training":            true,
	"Test flight":         true,
	"Military exercises":  true,
	"aerial survelliance": true,
}

// PlaceCount is a place name and the number of accidents naming it.
type PlaceCount struct {
	Place string
	Count int
}

// PlaceCounts groups accidents by the place returned by field, ignoring empty
// values, and orders the groups by ascending count (then name).
func PlaceCounts(accidents []Accident, field func(Accident) string) []PlaceCount {
	counts := make(map[string]int)
	for _, a := range accidents {
		if place := field(a); place != "" {
			counts[place]++
		}
	}
	out := make([]PlaceCount, 0, len(counts))
	for place, n := range counts {
		out = append(out, PlaceCount{Place: place, Count: n})
	}
	slices.SortFunc(out, func(a, b PlaceCount) int {
		if c := cmp.Compare(a.Count, b.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Place, b.Place)
	})
	return out
}

// Geolocate resolves the origins and then the destinations of accidents into
// previous, which is updated in place and returned (a new map is allocated
// when previous is nil). Ignored and already-located places are skipped.
// Places that failed before are retried. Lookup errors are logged and
// recorded as nil (graceful degradation).
func Geolocate(ctx context.Context, accidents []Accident, previous Geolocations, geocoder Geocoder, logger *slog.Logger) Geolocations {
	res := previous
	if res == nil {
		res = make(Geolocations)
	}
	if geocoder == nil {
		return res
	}

	fields := []func(Accident) string{
		func(a Accident) string { return a.Origin },
		func(a Accident) string { return a.Destination },
	}
	for _, field := range fields {
		for _, pc := range PlaceCounts(accidents, field) {
			if ctx.Err() != nil {
				return res
			}
			if IgnoredPlaces[pc.Place] {
				logger.Debug("ignoring place", "place", pc.Place)
				continue
			}
			if res.Located(pc.Place) {
				logger.Debug("place already located", "place", pc.Place)
				continue
			}
			res[pc.Place] = GeocodePlace(ctx, pc.Place, geocoder, logger)
		}
	}
	return res
}

// GeocodePlace resolves one place, returning nil on error or no match.
func GeocodePlace(ctx context.Context, place string, geocoder Geocoder, logger *slog.Logger) *LatLon {
	result, err := geocoder.Geocode(ctx, place)
	if err != nil {
		logger.Warn("geocoding failed", "place", place, "error", err)
		return nil
	}
	if !result.Found() {
		logger.Info("place not found", "place", place)
		return nil
	}
	ll := result.LatLon()
	logger.Info("place located", "place", place, "lat", ll.Lat, "lon", ll.Lon)
	return &ll
}
