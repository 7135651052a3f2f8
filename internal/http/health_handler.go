package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/product-catalog/internal/health"
)

type healthHandler struct {
	healthSvc *health.Service
}

func newHealthHandler(healthSvc *health.Service) *healthHandler {
	return &healthHandler{healthSvc: healthSvc}
}

// Health answers 200 for healthy and degraded, 503 for unhealthy.
func (h *healthHandler) Health(r *http.Request) (response, error) {
	report := h.healthSvc.Check(r.Context())

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	return response{status: status, body: report}, nil
}
