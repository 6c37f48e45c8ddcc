// Package api provides the HTTP surface of the Inertia momentum engine.
// The engine itself is a library; this server is the thin transport the
// excluded UI layer talks to.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inertia-app/inertia/internal/app/momentum"
	"github.com/inertia-app/inertia/internal/health"
	"github.com/inertia-app/inertia/internal/infra/sqlite"
)

// Server is the Inertia HTTP API server.
type Server struct {
	db             *sqlite.DB
	writer         *momentum.Writer
	gaps           *momentum.GapDetector
	checker        *health.Checker
	metricsEnabled bool
}

// NewServer creates a new API server over the store and engine services.
func NewServer(db *sqlite.DB, writer *momentum.Writer, gaps *momentum.GapDetector) *Server {
	return &Server{db: db, writer: writer, gaps: gaps}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches the on-demand health checker. Without one the
// health endpoint only reports that the process is up.
func (s *Server) SetHealth(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/users/{user}", func(r chi.Router) {
		r.Post("/checkin", s.handleCheckin)
		r.Post("/session-start", s.handleSessionStart)
		r.Post("/gap/reconcile", s.handleReconcile)
		r.Post("/exercise", s.handleLogExercise)
		r.Get("/records", s.handleListRecords)
		r.Get("/records/{date}", s.handleGetRecord)
		r.Get("/summary", s.handleSummary)
		r.Get("/milestones", s.handleMilestones)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth probes the store and data dir when a checker is
// attached; an unhealthy store answers 503 so supervisors can restart.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	statuses := s.checker.RunAll(r.Context())
	status := http.StatusOK
	summary := "ok"
	if !health.Healthy(statuses) {
		status = http.StatusServiceUnavailable
		summary = "degraded"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": summary,
		"checks": statuses,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
