package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"devevent/internal/delivery/http/helpers"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthStatus is the payload of GET /healthz.
type HealthStatus struct {
	Status string `json:"status"`
}

type HealthController struct {
	Logger *slog.Logger
	Check  HealthCheck
}

func NewHealthController(logger *slog.Logger, check HealthCheck) *HealthController {
	return &HealthController{Logger: logger, Check: check}
}

// Health godoc
// @Summary Health check
// @Description Reports ok once the database connection can be acquired.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if c.Check != nil {
		if err := c.Check(r.Context()); err != nil {
			c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "database unavailable")
			return
		}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthStatus{Status: "ok"})
}
