// Package chi exposes the ingestion and retrieval pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/domain/batch"
	healthuc "github.com/shelfstream/prodex/internal/usecase/health"
)

// maxBodyBytes bounds an ingestion request body.
const maxBodyBytes = 32 << 20

// Ingestor runs the ingestion pipeline for one request body.
type Ingestor interface {
	Ingest(ctx context.Context, tenantID string, body []byte) ([]batch.Result, error)
}

// Retriever serves randomized tenant-scoped product samples.
type Retriever interface {
	Random(ctx context.Context, tenantID string, size int) ([]domain.Product, error)
}

// HealthChecker reports component availability.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers for the API surface.
type Server struct {
	ingest   Ingestor
	retrieve Retriever
	health   HealthChecker
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(ingest Ingestor, retrieve Retriever, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{ingest: ingest, retrieve: retrieve, health: health, logger: logger}
}

// NewRouter builds the router: the given middlewares first, then CORS and the
// tenant check, then the routes. Unmatched routes answer JSON 404, method
// mismatches 405.
func NewRouter(s *Server, middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Use(CORSMiddleware())
	r.Use(TenantMiddleware())

	r.Get("/search", s.RetrieveProducts)
	r.Post("/search", s.IngestProducts)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}

// RetrieveProducts handles GET /search.
func (s *Server) RetrieveProducts(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid size parameter", nil)
			return
		}
		size = n
	}

	tenantID := domain.TenantFromContext(r.Context())
	products, err := s.retrieve.Random(r.Context(), tenantID, size)
	if err != nil {
		s.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// IngestProducts handles POST /search.
func (s *Server) IngestProducts(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", nil)
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "Missing request body", nil)
		return
	}

	tenantID := domain.TenantFromContext(r.Context())
	results, err := s.ingest.Ingest(r.Context(), tenantID, body)
	if err != nil {
		s.handleError(w, err)
		return
	}

	items := make([]itemResult, len(results))
	for i, res := range results {
		items[i] = itemResultFrom(res)
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorEnvelope is the body of every non-2xx response: a client-safe message
// plus optional structured detail.
type errorEnvelope struct {
	Message string `json:"message"`
	Detail  any    `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string, detail any) {
	writeJSON(w, status, errorEnvelope{Message: message, Detail: detail})
}
