package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FlightPath returns a line feature from the accident's origin to its
// destination. ok is false unless both places are located and distinct.
func FlightPath(a Accident, geolocs Geolocations) (f *geojson.Feature, ok bool) {
	from, to := geolocs[a.Origin], geolocs[a.Destination]
	if from == nil || to == nil || a.Origin == a.Destination {
		return nil, false
	}

	mid := MidPoint(*from, *to)
	f = geojson.NewFeature(orb.LineString{from.Point(), to.Point()})
	f.ID = a.ID
	f.Properties["date"] = a.Date.Format("2006-01-02")
	f.Properties["operator"] = a.Operator
	f.Properties["origin"] = a.Origin
	f.Properties["destination"] = a.Destination
	f.Properties["location"] = a.Location
	f.Properties["location_country"] = a.LocationCountry
	f.Properties["fatalities"] = a.FatalitiesTotal()
	f.Properties["distance_m"] = GeoDistance(*from, *to)
	f.Properties["midpoint"] = []float64{mid.Lon, mid.Lat}
	return f, true
}

// FlightPaths collects the flight path of every accident that has one.
func FlightPaths(accidents []Accident, geolocs Geolocations) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range accidents {
		if f, ok := FlightPath(a, geolocs); ok {
			fc.Append(f)
		}
	}
	return fc
}
