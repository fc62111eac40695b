// Package planecrashinfo scrapes the accident database published as HTML
// tables on planecrashinfo.com.
package planecrashinfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/observability"
)

// ErrNotFound is returned when the site has no page for a year.
var ErrNotFound = errors.New("page not found")

// ErrAccidentNotFound is returned when a year lists an accident whose detail
// page is missing. It does not match ErrNotFound.
var ErrAccidentNotFound = errors.New("accident page not found")

// Page kinds, used as metric labels.
const (
	kindIndex    = "index"
	kindYear     = "year"
	kindAccident = "accident"
)

// Client fetches and parses planecrashinfo.com pages.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewClient creates a scraper for the site at baseURL. concurrency bounds the
// number of detail pages fetched at once by YearAccidents.
func NewClient(baseURL string, timeout time.Duration, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// Years returns the years listed on database.htm, in page order.
func (c *Client) Years(ctx context.Context) ([]int, error) {
	doc, err := c.document(ctx, "/database.htm", kindIndex)
	if err != nil {
		return nil, err
	}
	return parseYears(doc)
}

// AccidentsPerYear returns the number of accidents listed for year.
func (c *Client) AccidentsPerYear(ctx context.Context, year int) (int, error) {
	doc, err := c.document(ctx, fmt.Sprintf("/%d/%d.htm", year, year), kindYear)
	if err != nil {
		return 0, err
	}
	return countAccidentRows(doc)
}

// AccidentHTML returns the raw HTML of one accident detail page.
func (c *Client) AccidentHTML(ctx context.Context, year, number int) ([]byte, error) {
	body, err := c.fetch(ctx, accidentPath(year, number), kindAccident)
	if err != nil {
		return nil, accidentErr(year, number, err)
	}
	return body, nil
}

// Accident fetches and parses one accident detail page.
func (c *Client) Accident(ctx context.Context, year, number int) (domain.RawAccident, error) {
	doc, err := c.document(ctx, accidentPath(year, number), kindAccident)
	if err != nil {
		return domain.RawAccident{}, accidentErr(year, number, err)
	}
	fields, err := parseDetailTable(doc)
	if err != nil {
		return domain.RawAccident{}, fmt.Errorf("accident %d-%d: %w", year, number, err)
	}
	c.metrics.AccidentsScraped.Inc()
	return domain.RawAccidentFromFields(year, number, fields), nil
}

// YearAccidents fetches every accident of year. Results are ordered by
// accident number. Any failing page fails the whole year; ErrNotFound is
// returned only when the year page itself is missing.
func (c *Client) YearAccidents(ctx context.Context, year int) ([]domain.RawAccident, error) {
	n, err := c.AccidentsPerYear(ctx, year)
	if err != nil {
		return nil, err
	}
	c.logger.Info("scraping year", "year", year, "accidents", n)

	out := make([]domain.RawAccident, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range n {
		num := i + 1
		g.Go(func() error {
			rec, err := c.Accident(gctx, year, num)
			if err != nil {
				return err
			}
			c.logger.Debug("scraped accident", "year", year, "number", num)
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func accidentErr(year, number int, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("accident %d-%d: %w", year, number, ErrAccidentNotFound)
	}
	return err
}

func accidentPath(year, number int) string {
	return fmt.Sprintf("/%d/%d-%d.htm", year, year, number)
}

func (c *Client) document(ctx context.Context, path, kind string) (*goquery.Document, error) {
	body, err := c.fetch(ctx, path, kind)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, path, kind string) ([]byte, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.PagesFetched.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.PagesFetched.WithLabelValues(kind, "not_found").Inc()
		return nil, fmt.Errorf("get %s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.metrics.PagesFetched.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("get %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.PagesFetched.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c.metrics.PagesFetched.WithLabelValues(kind, "success").Inc()
	return body, nil
}
