package here

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

// Layer is a drawable collection of features, such as a web map overlay.
type Layer interface {
	Add(f *geojson.Feature)
	Remove(f *geojson.Feature)
}

// FeatureLayer is a Layer backed by a GeoJSON feature collection.
type FeatureLayer struct {
	mu       sync.Mutex
	features []*geojson.Feature
}

// NewFeatureLayer returns an empty layer.
func NewFeatureLayer() *FeatureLayer {
	return &FeatureLayer{}
}

// Add appends f to the layer.
func (l *FeatureLayer) Add(f *geojson.Feature) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.features = append(l.features, f)
}

// Remove drops f from the layer. Unknown features are ignored.
func (l *FeatureLayer) Remove(f *geojson.Feature) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.features = slices.DeleteFunc(l.features, func(g *geojson.Feature) bool { return g == f })
}

// Collection returns a snapshot of the layer's features.
func (l *FeatureLayer) Collection() *geojson.FeatureCollection {
	l.mu.Lock()
	defer l.mu.Unlock()
	fc := geojson.NewFeatureCollection()
	for _, f := range l.features {
		fc.Append(f)
	}
	return fc
}

type isolineResponse struct {
	Response struct {
		Isoline []struct {
			Component []struct {
				Shape []string `json:"shape"`
			} `json:"component"`
		} `json:"isoline"`
	} `json:"response"`
}

// Isoline draws the area reachable within a distance from a center point.
// Responses are cached per range, so redrawing a previous range makes no
// request.
type Isoline struct {
	client *Client
	center domain.LatLon
	params map[string]string
	layer  Layer

	mu      sync.Mutex
	cache   map[int]orb.Ring
	current *geojson.Feature
}

// NewIsoline creates an isoline around center drawn into layer. params
// override the default mode and rangetype.
func (c *Client) NewIsoline(center domain.LatLon, layer Layer, params map[string]string) *Isoline {
	return &Isoline{
		client: c,
		center: center,
		params: params,
		layer:  layer,
		cache:  make(map[int]orb.Ring),
	}
}

// Ring returns the isoline polygon for the given range in meters.
func (i *Isoline) Ring(ctx context.Context, meters int) (orb.Ring, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ring(ctx, meters)
}

func (i *Isoline) ring(ctx context.Context, meters int) (orb.Ring, error) {
	if r, ok := i.cache[meters]; ok {
		return r, nil
	}
	i.client.logger.Info("loading isoline", "range_m", meters)

	q := url.Values{
		"app_id":    {i.client.appID},
		"app_code":  {i.client.appCode},
		"start":     {geoWaypoint(i.center)},
		"mode":      {"fastest;car;traffic:disabled"},
		"range":     {strconv.Itoa(meters)},
		"rangetype": {"distance"},
	}
	for k, v := range i.params {
		q.Set(k, v)
	}

	var resp isolineResponse
	if err := i.client.getJSON(ctx, "isoline", i.client.isolineURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Response.Isoline) == 0 || len(resp.Response.Isoline[0].Component) == 0 {
		return nil, errors.New("here isoline: empty response")
	}
	r, err := parseShape(resp.Response.Isoline[0].Component[0].Shape)
	if err != nil {
		return nil, err
	}
	i.cache[meters] = r
	return r, nil
}

// Draw replaces the previously drawn isoline in the layer with the one for
// the given range.
func (i *Isoline) Draw(ctx context.Context, meters int) (*geojson.Feature, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	r, err := i.ring(ctx, meters)
	if err != nil {
		return nil, err
	}
	if i.current != nil {
		i.layer.Remove(i.current)
	}
	f := geojson.NewFeature(orb.Polygon{r})
	f.Properties["kind"] = "isoline"
	f.Properties["range_m"] = meters
	f.Properties["color"] = "red"
	f.Properties["weight"] = 2
	f.Properties["fill"] = true
	i.layer.Add(f)
	i.current = f
	return f, nil
}

// parseShape converts "lat,lon" strings into a closed ring.
func parseShape(shape []string) (orb.Ring, error) {
	r := make(orb.Ring, 0, len(shape)+1)
	for _, s := range shape {
		latStr, lonStr, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("here isoline: bad shape point %q", s)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("here isoline: bad latitude %q: %w", s, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("here isoline: bad longitude %q: %w", s, err)
		}
		r = append(r, orb.Point{lon, lat})
	}
	if len(r) > 0 && !r.Closed() {
		r = append(r, r[0])
	}
	return r, nil
}
