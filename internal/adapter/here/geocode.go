package here

import (
	"context"
	"net/url"
	"time"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

const geocodeProvider = "here"

type geocodeResponse struct {
	Response struct {
		View []struct {
			Result []struct {
				Relevance float64 `json:"Relevance"`
				Location  struct {
					DisplayPosition struct {
						Latitude  float64 `json:"Latitude"`
						Longitude float64 `json:"Longitude"`
					} `json:"DisplayPosition"`
					Address struct {
						Label string `json:"Label"`
					} `json:"Address"`
				} `json:"Location"`
			} `json:"Result"`
		} `json:"View"`
	} `json:"Response"`
}

// Geocode implements domain.Geocoder with the HERE geocoder API.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeocodingResult, error) {
	q := url.Values{
		"app_id":     {c.appID},
		"app_code":   {c.appCode},
		"searchtext": {address},
	}

	start := time.Now()
	var resp geocodeResponse
	err := c.getJSON(ctx, "geocode", c.geocodeURL+"?"+q.Encode(), &resp)
	c.metrics.GeocodeAPIDuration.WithLabelValues(geocodeProvider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(geocodeProvider, "error").Inc()
		return domain.GeocodingResult{}, err
	}

	if len(resp.Response.View) == 0 || len(resp.Response.View[0].Result) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues(geocodeProvider, "empty").Inc()
		return domain.GeocodingResult{}, nil
	}
	c.metrics.GeocodeRequests.WithLabelValues(geocodeProvider, "success").Inc()

	r := resp.Response.View[0].Result[0]
	return domain.GeocodingResult{
		Lat:         r.Location.DisplayPosition.Latitude,
		Lon:         r.Location.DisplayPosition.Longitude,
		DisplayName: r.Location.Address.Label,
		Confidence:  r.Relevance,
	}, nil
}
