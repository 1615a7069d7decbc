// Package dashboard serves the generated telemetry, the derived ESG
// aggregates and the disclosure exports over a JSON HTTP API. Each server
// owns one independently generated copy of the session tables.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"carbonsense.dev/carbonsense/internal/audit"
	"carbonsense.dev/carbonsense/internal/esg"
	"carbonsense.dev/carbonsense/pkg/generator"
	"carbonsense.dev/carbonsense/pkg/metrics"
)

// defaultReportingPeriod labels disclosure queries that omit a period.
const defaultReportingPeriod = "Q1-2024"

// ServerConfig holds the configuration for the dashboard server.
type ServerConfig struct {
	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// HTTPPort is the listen port for the API.
	HTTPPort int

	// Assets is the asset registry (defaults to generator.DefaultFleet).
	Assets []generator.Asset

	// Seed makes the session's generated tables reproducible. Zero picks
	// a random seed.
	Seed int64

	// AuditRecords is the audit table size (defaults to 100).
	AuditRecords int

	// Pipeline is the optional Prometheus metrics collector for the
	// generation/aggregation pipeline.
	Pipeline *metrics.PipelineMetrics

	// HTTP is the optional Prometheus metrics collector for the API.
	HTTP *metrics.DashboardMetrics
}

// Server is the dashboard HTTP server over one generated session.
type Server struct {
	logger     *slog.Logger
	config     *ServerConfig
	httpServer *http.Server

	assets     []generator.Asset
	readings   generator.ReadingTable
	auditTable generator.AuditTable
	aggregator *esg.Aggregator
	trail      *audit.Trail

	pipeline    *metrics.PipelineMetrics
	httpMetrics *metrics.DashboardMetrics
}

var (
	errNilConfig      = errors.New("server config cannot be nil")
	errLoggerRequired = errors.New("logger cannot be nil")
	errInvalidPort    = errors.New("HTTP port must be positive")
)

// NewServer generates the session tables and returns a dashboard server
// ready to run.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if cfg.Logger == nil {
		return nil, errLoggerRequired
	}
	if cfg.HTTPPort <= 0 {
		return nil, errInvalidPort
	}

	assets := cfg.Assets
	if len(assets) == 0 {
		assets = generator.DefaultFleet()
	}

	gen, err := generator.New(generator.Config{
		Assets:       assets,
		Seed:         cfg.Seed,
		AuditRecords: cfg.AuditRecords,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	readings, auditTable := gen.Generate()

	if cfg.Pipeline != nil {
		cfg.Pipeline.ReadingsGenerated.Add(float64(len(readings)))
		cfg.Pipeline.AuditRecordsGenerated.Add(float64(len(auditTable)))
	}

	return &Server{
		logger:      cfg.Logger,
		config:      cfg,
		assets:      gen.Assets(),
		readings:    readings,
		auditTable:  auditTable,
		aggregator:  esg.NewAggregator(readings, cfg.Seed),
		trail:       audit.NewTrail(auditTable),
		pipeline:    cfg.Pipeline,
		httpMetrics: cfg.HTTP,
	}, nil
}

// Run starts the dashboard server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting dashboard server",
		"assets", len(s.assets),
		"readings", len(s.readings),
		"audit_records", len(s.auditTable),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "address", s.httpServer.Addr)

	httpErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(httpErr)
	}()

	select {
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
		s.logger.Info("context canceled")
	case err := <-httpErr:
		if err != nil {
			s.logger.Error("HTTP server error", "error", err)
			cancel()
			return err
		}
	}

	return s.Shutdown()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down dashboard server")

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown HTTP server", "error", err)
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
	}

	s.logger.Info("dashboard server shutdown completed")
	return nil
}

// Handler returns the dashboard's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and Prometheus exposition
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	// Generated tables
	mux.HandleFunc("GET /api/assets", s.instrument("/api/assets", s.handleAssets))
	mux.HandleFunc("GET /api/readings/latest", s.instrument("/api/readings/latest", s.handleLatestReadings))

	// Aggregates
	mux.HandleFunc("GET /api/emissions/scope1", s.instrument("/api/emissions/scope1", s.handleScope1))
	mux.HandleFunc("GET /api/water-intensity", s.instrument("/api/water-intensity", s.handleWaterIntensity))
	mux.HandleFunc("GET /api/disclosure", s.instrument("/api/disclosure", s.handleDisclosure))
	mux.HandleFunc("GET /api/disclosure/export", s.instrument("/api/disclosure/export", s.handleDisclosureExport))
	mux.HandleFunc("GET /api/assets/{name}/performance", s.instrument("/api/assets/{name}/performance", s.handleAssetPerformance))
	mux.HandleFunc("POST /api/simulator", s.instrument("/api/simulator", s.handleSimulator))

	// Audit trail
	mux.HandleFunc("GET /api/audit/packet", s.instrument("/api/audit/packet", s.handleAuditPacket))
	mux.HandleFunc("GET /api/audit/anomalies", s.instrument("/api/audit/anomalies", s.handleAuditAnomalies))
	mux.HandleFunc("GET /api/audit/lineage/{id}", s.instrument("/api/audit/lineage/{id}", s.handleAuditLineage))

	return mux
}

// statusRecorder captures the response status code for metrics labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request count and duration metrics.
func (s *Server) instrument(path string, h http.HandlerFunc) http.HandlerFunc {
	if s.httpMetrics == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(s.httpMetrics.HTTPRequestDuration.WithLabelValues(r.Method, path))
		defer timer.ObserveDuration()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.httpMetrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
	}
}
