// Package kml exports geolocated places as a KML document for Google Earth
// and other GIS viewers.
package kml

import (
	"fmt"
	"io"

	gokml "github.com/twpayne/go-kml"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

// Export writes one placemark per located place, sorted by name. Places
// without coordinates are left out.
func Export(w io.Writer, g domain.Geolocations, title string) error {
	doc := gokml.Document(gokml.Name(title))
	for _, place := range g.Places() {
		p := g[place]
		if p == nil {
			continue
		}
		doc.Add(gokml.Placemark(
			gokml.Name(place),
			gokml.Point(gokml.Coordinates(gokml.Coordinate{Lon: p.Lon, Lat: p.Lat})),
		))
	}
	if err := gokml.KML(doc).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("write kml: %w", err)
	}
	return nil
}
