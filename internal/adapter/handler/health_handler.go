package handler

import (
	"log/slog"
	"net/http"

	"canasta/internal/domain/port"
)

type HealthHandler struct {
	cache   port.QuotationCache
	catalog port.SourceCatalog
	logger  *slog.Logger
}

// NewHealthHandler checks the cache and, when one is configured, the
// source catalog. catalog may be nil.
func NewHealthHandler(cache port.QuotationCache, catalog port.SourceCatalog, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		cache:   cache,
		catalog: catalog,
		logger:  logger,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	cacheStatus := "healthy"
	catalogStatus := "disabled"
	overallStatus := "healthy"

	if err := h.cache.Ping(r.Context()); err != nil {
		cacheStatus = "unhealthy"
		overallStatus = "degraded"
		h.logger.Warn("cache health check failed", "error", err)
	}

	if h.catalog != nil {
		catalogStatus = "healthy"
		if err := h.catalog.Ping(r.Context()); err != nil {
			catalogStatus = "unhealthy"
			overallStatus = "degraded"
			h.logger.Warn("catalog health check failed", "error", err)
		}
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status": overallStatus,
		"checks": map[string]string{
			"cache":   cacheStatus,
			"catalog": catalogStatus,
		},
	})
}
