package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/khushik17/notesweb/internal/database"
	"github.com/khushik17/notesweb/internal/middleware"
	"github.com/khushik17/notesweb/internal/queue"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	db      *database.DB
	limiter *middleware.RedisRateLimiter
	jobs    queue.JobQueue
}

// NewHealthChecker creates a new health checker. limiter and jobs may be nil
// when those subsystems are not wired, and are then skipped in extended mode.
func NewHealthChecker(db *database.DB, limiter *middleware.RedisRateLimiter, jobs queue.JobQueue) *HealthChecker {
	return &HealthChecker{db: db, limiter: limiter, jobs: jobs}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Root handles GET / and reports that the API is up
func (h *HealthChecker) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Lead Notes API is running!",
		"status":  "OK",
	})
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, response)
		return
	}

	checks := make(map[string]string)

	if err := h.checkDatabase(r.Context()); err != nil {
		response.Status = "unhealthy"
		checks["database"] = "unhealthy: " + err.Error()
	} else {
		checks["database"] = "healthy"
	}

	if h.limiter != nil {
		if err := h.checkRedis(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	}

	if h.jobs != nil {
		if err := h.checkQueue(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["queue"] = "unhealthy: " + err.Error()
		} else {
			checks["queue"] = "healthy"
		}
	}

	response.Checks = checks

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, statusCode, response)
}

// checkDatabase verifies the database connection
func (h *HealthChecker) checkDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.db.PingContext(ctx)
}

// checkRedis verifies the rate limiter's redis connection
func (h *HealthChecker) checkRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.limiter.Ping(ctx)
}

// checkQueue verifies the job queue connection
func (h *HealthChecker) checkQueue(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.jobs.HealthCheck(ctx)
}
