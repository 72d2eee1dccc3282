package handler

import (
	"net/http"

	"github.com/embercortex/embercortex/internal/api/response"
	"github.com/embercortex/embercortex/internal/repository/sqlite"
	"github.com/embercortex/embercortex/internal/upstream/health"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database connectivity
func ReadyCheck(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ServiceHealth probes the upstream inference services
func ServiceHealth(checker *health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, checker.Check(r.Context()))
	}
}
