package here

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

// Route is one calculated route. Shape holds the path as a flat
// lat, lon, lat, lon, ... sequence.
type Route struct {
	Shape []float64 `json:"shape"`
	Leg   []Leg     `json:"leg"`
}

// Leg is the part of a route between two waypoints.
type Leg struct {
	Maneuver []Maneuver `json:"maneuver"`
}

// Maneuver is a driving instruction at a position on the route.
type Maneuver struct {
	Position    Position `json:"position"`
	Instruction string   `json:"instruction"`
}

// Position is a HERE coordinate.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type routeResponse struct {
	Response struct {
		Route []Route `json:"route"`
	} `json:"response"`
}

// Route calculates routes from start to end. params override the default
// language and mode and add any further calculateroute parameters.
func (c *Client) Route(ctx context.Context, start, end domain.LatLon, params map[string]string) ([]Route, error) {
	q := url.Values{
		"app_id":            {c.appID},
		"app_code":          {c.appCode},
		"waypoint0":         {geoWaypoint(start)},
		"waypoint1":         {geoWaypoint(end)},
		"language":          {"en"},
		"mode":              {"fastest;car;traffic:disabled"},
		"metricsystem":      {"metric"},
		"jsonattributes":    {"41"},
		"routeattributes":   {"sh,gr"},
		"instructionFormat": {"text"},
	}
	for k, v := range params {
		q.Set(k, v)
	}

	var resp routeResponse
	if err := c.getJSON(ctx, "route", c.routeURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Response.Route) == 0 {
		return nil, errors.New("here route: no route returned")
	}
	return resp.Response.Route, nil
}

func geoWaypoint(p domain.LatLon) string {
	return "geo!" + formatCoord(p.Lat) + "," + formatCoord(p.Lon)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Path returns the route shape as coordinates. A trailing unpaired value is
// dropped.
func (r Route) Path() []domain.LatLon {
	path := make([]domain.LatLon, 0, len(r.Shape)/2)
	for _, pair := range domain.Chunks(r.Shape, 2) {
		if len(pair) < 2 {
			break
		}
		path = append(path, domain.LatLon{Lat: pair[0], Lon: pair[1]})
	}
	return path
}

// Maneuvers maps maneuver positions of all legs to their instruction.
func (r Route) Maneuvers() map[domain.LatLon]string {
	out := make(map[domain.LatLon]string)
	for _, leg := range r.Leg {
		for _, m := range leg.Maneuver {
			out[domain.LatLon{Lat: m.Position.Latitude, Lon: m.Position.Longitude}] = m.Instruction
		}
	}
	return out
}

// Distance returns the geodesic length of the route path in meters.
func (r Route) Distance() float64 {
	var total float64
	for _, seg := range domain.Pairwise(r.Path()) {
		total += domain.GeoDistance(seg[0], seg[1])
	}
	return total
}

// RouteFeatures renders a route as GeoJSON: the path as a LineString in the
// given color, followed by one circle point per vertex. Vertices where a
// maneuver happens get radius 2 and a marker carrying the instruction; all
// others get radius 3.
func RouteFeatures(r Route, color string) *geojson.FeatureCollection {
	path := r.Path()
	maneuvers := r.Maneuvers()

	fc := geojson.NewFeatureCollection()
	line := make(orb.LineString, 0, len(path))
	for _, p := range path {
		line = append(line, p.Point())
	}
	pathFeature := geojson.NewFeature(line)
	pathFeature.Properties["kind"] = "path"
	pathFeature.Properties["color"] = color
	pathFeature.Properties["fill"] = false
	pathFeature.Properties["distance_m"] = r.Distance()
	fc.Append(pathFeature)

	for _, p := range path {
		f := geojson.NewFeature(p.Point())
		f.Properties["kind"] = "vertex"
		if inst, ok := maneuvers[p]; ok {
			f.Properties["radius"] = 2
			f.Properties["marker"] = true
			f.Properties["instruction"] = inst
		} else {
			f.Properties["radius"] = 3
		}
		fc.Append(f)
	}
	return fc
}
