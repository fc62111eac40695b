package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
// The zero value means the place was not found.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Confidence  float64 // provider relevance/importance score
}

// Found reports whether the provider matched the query.
func (r GeocodingResult) Found() bool {
	return r.DisplayName != "" || r.Lat != 0 || r.Lon != 0
}

// LatLon returns the result coordinate.
func (r GeocodingResult) LatLon() LatLon {
	return LatLon{Lat: r.Lat, Lon: r.Lon}
}

// Geocoder turns free-text place names into coordinates.
type Geocoder interface {
	// Geocode resolves a place name. A zero result with a nil error means
	// the provider had no match.
	Geocode(ctx context.Context, place string) (GeocodingResult, error)
}
