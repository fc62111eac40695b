package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for scraping,
// geocoding and HERE requests.
type Metrics struct {
	// Scraping metrics.
	PagesFetched     *prometheus.CounterVec // labels: kind={index,year,accident}, outcome={success,not_found,error}
	AccidentsScraped prometheus.Counter
	YearsWritten     prometheus.Counter
	FetchDuration    *prometheus.HistogramVec // labels: kind

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider={nominatim,here}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider

	// HERE routing and isoline requests.
	HERERequests *prometheus.CounterVec // labels: endpoint={route,isoline,geocode}, outcome={success,error}

	// Published accidents (kafka).
	AccidentsPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PagesFetched,
		m.AccidentsScraped,
		m.YearsWritten,
		m.FetchDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.HERERequests,
		m.AccidentsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planecrash",
			Name:      "pages_fetched_total",
			Help:      "Pages fetched from planecrashinfo.com by kind and outcome.",
		}, []string{"kind", "outcome"}),
		AccidentsScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planecrash",
			Name:      "accidents_scraped_total",
			Help:      "Accident detail pages parsed into records.",
		}),
		YearsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planecrash",
			Name:      "years_written_total",
			Help:      "Yearly CSV snapshots written.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planecrash",
			Name:      "fetch_duration_seconds",
			Help:      "planecrashinfo.com request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planecrash",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planecrash",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planecrash",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		HERERequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planecrash",
			Name:      "here_requests_total",
			Help:      "HERE API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		AccidentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planecrash",
			Name:      "accidents_published_total",
			Help:      "Cleaned accidents written to the Kafka topic.",
		}),
	}
}
