package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"carbonsense.dev/carbonsense/internal/audit"
	"carbonsense.dev/carbonsense/internal/esg"
	"carbonsense.dev/carbonsense/internal/report"
	"carbonsense.dev/carbonsense/pkg/generator"
)

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// observeQuery tracks one aggregate query, when metrics are configured.
func (s *Server) observeQuery(query string) func() {
	if s.pipeline == nil {
		return func() {}
	}
	s.pipeline.AggregateQueries.WithLabelValues(query).Inc()
	timer := prometheus.NewTimer(s.pipeline.AggregateDuration.WithLabelValues(query))
	return func() { timer.ObserveDuration() }
}

// handleHealth serves the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAssets serves the asset registry.
func (s *Server) handleAssets(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.assets)
}

// handleLatestReadings serves the most recent reading per asset.
func (s *Server) handleLatestReadings(w http.ResponseWriter, _ *http.Request) {
	latest := make(map[string]generator.Reading, len(s.assets))
	for _, r := range s.readings {
		prev, ok := latest[r.AssetName]
		if !ok || r.Timestamp.After(prev.Timestamp) {
			latest[r.AssetName] = r
		}
	}

	rows := make([]generator.Reading, 0, len(latest))
	for _, a := range s.assets {
		if r, ok := latest[a.Name]; ok {
			rows = append(rows, r)
		}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

// handleScope1 serves the daily Scope-1 emissions rollup, optionally
// filtered by asset name.
func (s *Server) handleScope1(w http.ResponseWriter, r *http.Request) {
	defer s.observeQuery("scope1")()

	assetName := r.URL.Query().Get("asset")
	s.writeJSON(w, http.StatusOK, s.aggregator.Scope1Emissions(assetName))
}

// handleWaterIntensity serves the per-(date, asset) water intensity rollup.
func (s *Server) handleWaterIntensity(w http.ResponseWriter, _ *http.Request) {
	defer s.observeQuery("water_intensity")()

	s.writeJSON(w, http.StatusOK, s.aggregator.WaterIntensity())
}

// handleDisclosure serves the disclosure summary for the requested period.
func (s *Server) handleDisclosure(w http.ResponseWriter, r *http.Request) {
	defer s.observeQuery("disclosure")()

	period := r.URL.Query().Get("period")
	if period == "" {
		period = defaultReportingPeriod
	}
	s.writeJSON(w, http.StatusOK, s.aggregator.DisclosureReport(period))
}

// handleDisclosureExport serves the disclosure summary as a downloadable
// XLSX or PDF document named after the reporting period.
func (s *Server) handleDisclosureExport(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = defaultReportingPeriod
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}

	rep := s.aggregator.DisclosureReport(period)

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case "xlsx":
		body, err = report.BuildDisclosureXLSX(rep)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		body, err = report.BuildDisclosurePDF(rep)
		contentType = "application/pdf"
	default:
		http.Error(w, "unsupported format: "+format, http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error("failed to build disclosure export", "format", format, "error", err)
		if s.pipeline != nil {
			s.pipeline.ExportFailures.WithLabelValues(format).Inc()
		}
		http.Error(w, "failed to build export", http.StatusInternalServerError)
		return
	}

	if s.pipeline != nil {
		s.pipeline.ReportsExported.WithLabelValues(format).Inc()
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(period, format)+`"`)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write export body", "error", err)
	}
}

// handleAssetPerformance serves the per-asset performance summary.
func (s *Server) handleAssetPerformance(w http.ResponseWriter, r *http.Request) {
	defer s.observeQuery("asset_performance")()

	perf, err := s.aggregator.AssetPerformance(r.PathValue("name"))
	if err != nil {
		if errors.Is(err, esg.ErrUnknownAsset) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		s.logger.Error("failed to compute asset performance", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, perf)
}

// handleSimulator runs a decarbonization scenario against the session's
// baseline emissions.
func (s *Server) handleSimulator(w http.ResponseWriter, r *http.Request) {
	defer s.observeQuery("simulator")()

	var scenario esg.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		http.Error(w, "invalid scenario payload", http.StatusBadRequest)
		return
	}
	if err := scenario.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.writeJSON(w, http.StatusOK, s.aggregator.SimulateDecarbonization(scenario))
}

// handleAuditPacket serves the auditor compliance packet.
func (s *Server) handleAuditPacket(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.trail.Packet())
}

// handleAuditAnomalies serves the audit records that failed verification.
func (s *Server) handleAuditAnomalies(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.trail.Anomalies())
}

// handleAuditLineage serves the lineage record for one data point ID.
func (s *Server) handleAuditLineage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.trail.Lineage(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			http.Error(w, "data point not found", http.StatusNotFound)
			return
		}
		s.logger.Error("failed to trace lineage", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
