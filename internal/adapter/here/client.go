// Package here talks to the HERE Maps REST APIs: map tiles, routing,
// isolines and geocoding. All requests authenticate with an app id and app
// code passed as query parameters; log output masks both.
package here

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/planecrash-geodata/internal/observability"
)

const (
	defaultRouteURL   = "https://route.cit.api.here.com/routing/7.2/calculateroute.json"
	defaultIsolineURL = "https://isoline.route.api.here.com/routing/7.2/calculateisoline.json"
	defaultGeocodeURL = "https://geocoder.api.here.com/6.2/geocode.json"
)

var (
	appIDPattern   = regexp.MustCompile(`app_id=[-\w]+`)
	appCodePattern = regexp.MustCompile(`app_code=[-\w]+`)
)

// MaskCredentials hides app_id and app_code values in text, e.g. a request
// URL about to be logged or shown.
func MaskCredentials(text string) string {
	masked := appIDPattern.ReplaceAllString(text, "app_id=******")
	return appCodePattern.ReplaceAllString(masked, "app_code=******")
}

// Client calls the HERE APIs with one set of credentials.
type Client struct {
	appID      string
	appCode    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *observability.Metrics

	routeURL   string
	isolineURL string
	geocodeURL string
}

// NewClient creates a HERE client. perSecond paces every request the client
// makes; routing, isoline and geocoding calls share one limiter.
func NewClient(appID, appCode string, timeout time.Duration, perSecond float64, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		appID:      appID,
		appCode:    appCode,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:     logger,
		metrics:    metrics,
		routeURL:   defaultRouteURL,
		isolineURL: defaultIsolineURL,
		geocodeURL: defaultGeocodeURL,
	}
}

// getJSON waits on the rate limiter, fetches fullURL and decodes the JSON
// body into out. endpoint is the metric label.
func (c *Client) getJSON(ctx context.Context, endpoint, fullURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("here %s: rate limit: %w", endpoint, err)
	}

	masked := MaskCredentials(fullURL)
	c.logger.Debug("here request", "endpoint", endpoint, "url", masked)

	err := c.doGet(ctx, fullURL, out)
	if err != nil {
		c.metrics.HERERequests.WithLabelValues(endpoint, "error").Inc()
		// Transport errors embed the URL; keep credentials out of them.
		return fmt.Errorf("here %s: %s", endpoint, MaskCredentials(err.Error()))
	}
	c.metrics.HERERequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

func (c *Client) doGet(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
