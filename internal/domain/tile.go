package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"
)

// DegToTile returns the slippy-map tile containing lat/lon at the given zoom.
func DegToTile(lat, lon float64, zoom uint32) (x, y uint32) {
	t := maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom))
	return t.X, t.Y
}

// TileToDeg returns the north-west corner of tile x/y at the given zoom.
func TileToDeg(x, y, zoom uint32) LatLon {
	b := maptile.New(x, y, maptile.Zoom(zoom)).Bound()
	return LatLon{Lat: b.Top(), Lon: b.Left()}
}

// MercatorToWGS84 converts Web Mercator (EPSG:3857) meters to WGS-84 degrees.
func MercatorToWGS84(x, y float64) LatLon {
	return LatLonFromPoint(project.Mercator.ToWGS84(orb.Point{x, y}))
}

// MercatorExtentToWGS84 converts a Web Mercator extent to a WGS-84 bound,
// e.g. to label a basemap image fetched in projected coordinates.
func MercatorExtentToWGS84(xmin, xmax, ymin, ymax float64) orb.Bound {
	lo := MercatorToWGS84(xmin, ymin)
	hi := MercatorToWGS84(xmax, ymax)
	return orb.Bound{Min: lo.Point(), Max: hi.Point()}
}
