package here

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const tilesURLTemplate = "https://{server}.{maptype}.maps.api.here.com" +
	"/maptile/2.1/{tiletype}/newest/{scheme}/{z}/{x}/{y}/{tilesize}/{tileformat}" +
	"?lg={lg}&app_id={app_id}&app_code={app_code}"

// Basemap describes a HERE tile layer for slippy-map clients.
type Basemap struct {
	URL         string `json:"url"`
	MinZoom     int    `json:"min_zoom"`
	MaxZoom     int    `json:"max_zoom"`
	Attribution string `json:"attribution"`
	Name        string `json:"name"`
}

// TilesURL returns a tile URL template. x, y and z stay as "{x}", "{y}" and
// "{z}" placeholders unless overridden; any other template field (maptype,
// tiletype, scheme, tilesize, tileformat, lg, server) may be overridden too.
func (c *Client) TilesURL(overrides map[string]string) string {
	params := map[string]string{
		"app_id":     c.appID,
		"app_code":   c.appCode,
		"maptype":    "traffic",
		"tiletype":   "traffictile",
		"scheme":     "normal.day",
		"tilesize":   "256",
		"tileformat": "png8",
		"lg":         "eng",
		"x":          "{x}",
		"y":          "{y}",
		"z":          "{z}",
		"server":     strconv.Itoa(rand.IntN(4) + 1),
	}
	for k, v := range overrides {
		params[k] = v
	}

	pairs := make([]string, 0, 2*len(params))
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tilesURLTemplate)
}

// Basemap returns the tile layer description. overrides apply to the tile
// URL and to the min_zoom, max_zoom, attribution and name fields.
func (c *Client) Basemap(overrides map[string]string) (Basemap, error) {
	b := Basemap{
		URL:         c.TilesURL(overrides),
		MinZoom:     1,
		MaxZoom:     18,
		Attribution: "Tiles &copy; HERE.com",
		Name:        "HERE",
	}
	for k, v := range overrides {
		switch k {
		case "min_zoom", "max_zoom":
			n, err := strconv.Atoi(v)
			if err != nil {
				return Basemap{}, fmt.Errorf("invalid %s %q", k, v)
			}
			if k == "min_zoom" {
				b.MinZoom = n
			} else {
				b.MaxZoom = n
			}
		case "attribution":
			b.Attribution = v
		case "name":
			b.Name = v
		case "url":
			b.URL = v
		}
	}
	if b.MinZoom > b.MaxZoom {
		return Basemap{}, fmt.Errorf("min_zoom %d above max_zoom %d", b.MinZoom, b.MaxZoom)
	}
	return b, nil
}
