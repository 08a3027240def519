package api

import (
	"context"
	"net/http"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/api/shared"
	"github.com/taskdesk/taskdesk-api/internal/platform/logger"
	"github.com/taskdesk/taskdesk-api/internal/redact"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// Health statuses reported by GET /health.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "down"
)

// HealthCheckTimeout bounds every individual check.
const HealthCheckTimeout = 2 * time.Second

// HealthHandler reports backend reachability. The store is required; the
// cache is optional and only degrades the status.
type HealthHandler struct {
	store store.HealthChecker
	cache store.HealthChecker
}

// NewHealthHandler creates a HealthHandler. cache may be nil.
func NewHealthHandler(st, cache store.HealthChecker) *HealthHandler {
	return &HealthHandler{store: st, cache: cache}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: HealthOK, Checks: map[string]string{}}
	status := http.StatusOK

	if err := ping(r.Context(), h.store); err != nil {
		logger.FromContext(r.Context()).Error("store health check failed",
			"error", redact.Error(err))
		resp.Checks["store"] = HealthDown
		resp.Status = HealthDown
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["store"] = HealthOK
	}

	if h.cache != nil {
		if err := ping(r.Context(), h.cache); err != nil {
			logger.FromContext(r.Context()).Warn("cache health check failed",
				"error", redact.Error(err))
			resp.Checks["cache"] = HealthDown
			if resp.Status == HealthOK {
				resp.Status = HealthDegraded
			}
		} else {
			resp.Checks["cache"] = HealthOK
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}

func ping(ctx context.Context, hc store.HealthChecker) error {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()
	return hc.Ping(ctx)
}
