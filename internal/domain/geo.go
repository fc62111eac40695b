package domain

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/geodesic"
)

// LatLon is a WGS-84 coordinate in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the coordinate in orb's lon/lat order.
func (p LatLon) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// LatLonFromPoint converts an orb point (lon, lat) back to a LatLon.
func LatLonFromPoint(p orb.Point) LatLon {
	return LatLon{Lat: p.Lat(), Lon: p.Lon()}
}

// GeoDistance returns the geodesic distance from p to q on the WGS-84
// ellipsoid, in meters.
func GeoDistance(p, q LatLon) float64 {
	var s12, azi1, azi2 float64
	geodesic.WGS84.Inverse(p.Lat, p.Lon, q.Lat, q.Lon, &s12, &azi1, &azi2)
	return s12
}

// MidPoint returns the point halfway along the geodesic from p to q.
func MidPoint(p, q LatLon) LatLon {
	var s12, azi1, azi2 float64
	geodesic.WGS84.Inverse(p.Lat, p.Lon, q.Lat, q.Lon, &s12, &azi1, &azi2)

	var lat, lon, azi float64
	geodesic.WGS84.Direct(p.Lat, p.Lon, azi1, s12/2, &lat, &lon, &azi)
	return LatLon{Lat: lat, Lon: lon}
}

// Pairwise returns consecutive pairs: s0,s1 then s1,s2 and so on.
func Pairwise[T any](s []T) [][2]T {
	if len(s) < 2 {
		return nil
	}
	out := make([][2]T, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		out = append(out, [2]T{s[i-1], s[i]})
	}
	return out
}

// Chunks splits s into successive slices of n elements. The last chunk may
// be shorter. n <= 0 yields nil.
func Chunks[T any](s []T, n int) [][]T {
	if n <= 0 {
		return nil
	}
	out := make([][]T, 0, (len(s)+n-1)/n)
	for i := 0; i < len(s); i += n {
		out = append(out, s[i:min(i+n, len(s))])
	}
	return out
}
