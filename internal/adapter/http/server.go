package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

// Catalog is the read model served under /api.
type Catalog interface {
	sharedobs.ReadinessChecker
	Geolocations() domain.Geolocations
	FlightPaths() *geojson.FeatureCollection
}

// Server exposes health, readiness, metrics and the geodata API.
type Server struct {
	httpServer *http.Server
	catalog    Catalog
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /api/geolocations and /api/flightpaths routes.
func NewServer(addr string, catalog Catalog, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(catalog))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/geolocations", s.handleGeolocations)
	mux.HandleFunc("GET /api/flightpaths", s.handleFlightPaths)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleGeolocations serves the place lookup. ?located=true drops places
// without coordinates.
func (s *Server) handleGeolocations(w http.ResponseWriter, r *http.Request) {
	g := s.catalog.Geolocations()
	if r.URL.Query().Get("located") == "true" {
		located := make(domain.Geolocations, len(g))
		for place, p := range g {
			if p != nil {
				located[place] = p
			}
		}
		g = located
	}
	if g == nil {
		g = domain.Geolocations{}
	}
	writeJSON(w, http.StatusOK, g, s.logger)
}

func (s *Server) handleFlightPaths(w http.ResponseWriter, _ *http.Request) {
	fc := s.catalog.FlightPaths()
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		s.logger.Warn("write flight paths", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response", "error", err)
	}
}
