package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/couchcryptid/planecrash-geodata/internal/adapter/planecrashinfo"
	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/observability"
)

// YearScraper fetches every accident of a year.
type YearScraper interface {
	YearAccidents(ctx context.Context, year int) ([]domain.RawAccident, error)
}

// YearWriter persists yearly snapshots.
type YearWriter interface {
	HasYear(year int) bool
	WriteYear(year int, recs []domain.RawAccident) error
}

// DownloadSummary reports what DownloadYears did per year.
type DownloadSummary struct {
	Written []int
	Skipped []int // snapshot already present
	Missing []int // not published on the site
}

// Downloader scrapes years into snapshot files.
type Downloader struct {
	scraper YearScraper
	store   YearWriter
	logger  *slog.Logger
	metrics *observability.Metrics
	force   bool
}

// NewDownloader creates a Downloader. With force set, existing snapshots are
// scraped again.
func NewDownloader(s YearScraper, w YearWriter, logger *slog.Logger, metrics *observability.Metrics, force bool) *Downloader {
	return &Downloader{scraper: s, store: w, logger: logger, metrics: metrics, force: force}
}

// DownloadYears scrapes each year that has no snapshot yet. A year that times
// out is retried once. Years the site does not have are skipped; any other
// error stops the run.
func (d *Downloader) DownloadYears(ctx context.Context, years []int) (DownloadSummary, error) {
	var sum DownloadSummary
	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if !d.force && d.store.HasYear(year) {
			d.logger.Debug("snapshot exists, skipping", "year", year)
			sum.Skipped = append(sum.Skipped, year)
			continue
		}

		recs, err := d.scrape(ctx, year)
		if errors.Is(err, planecrashinfo.ErrNotFound) {
			d.logger.Warn("year not found on site, skipping", "year", year, "error", err)
			sum.Missing = append(sum.Missing, year)
			continue
		}
		if err != nil {
			return sum, err
		}

		if err := d.store.WriteYear(year, recs); err != nil {
			return sum, err
		}
		d.metrics.YearsWritten.Inc()
		d.logger.Info("year saved", "year", year, "accidents", len(recs))
		sum.Written = append(sum.Written, year)
	}
	return sum, nil
}

func (d *Downloader) scrape(ctx context.Context, year int) ([]domain.RawAccident, error) {
	recs, err := d.scraper.YearAccidents(ctx, year)
	if err != nil && IsTimeout(err) && ctx.Err() == nil {
		d.logger.Warn("year timed out, retrying once", "year", year, "error", err)
		recs, err = d.scraper.YearAccidents(ctx, year)
	}
	return recs, err
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
