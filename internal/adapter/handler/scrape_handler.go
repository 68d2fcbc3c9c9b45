package handler

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"canasta/internal/application/usecase"
	"canasta/internal/domain/port"
)

// ScrapeHandler exposes raw lookups against the scrape source. It is the
// only entry point behind the rate limiter.
type ScrapeHandler struct {
	useCase *usecase.PriceUseCase
	limiter port.RateLimiter
	logger  *slog.Logger
}

func NewScrapeHandler(useCase *usecase.PriceUseCase, limiter port.RateLimiter, logger *slog.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		useCase: useCase,
		limiter: limiter,
		logger:  logger,
	}
}

// Scrape handles POST /precios/scrape with {producto} or {productos: [...]}.
func (h *ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	id := clientIdentity(r)
	if !h.limiter.Allow(id) {
		retry := int(math.Ceil(h.limiter.RetryAfter(id).Seconds()))
		if retry < 1 {
			retry = 1
		}
		h.logger.Info("scrape rate limited", "identity", id, "retry_after", retry)
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		writeJSON(w, http.StatusTooManyRequests, envelope{
			Error:      "demasiadas solicitudes, intenta nuevamente más tarde",
			RetryAfter: &retry,
		})
		return
	}

	var body struct {
		Producto  any `json:"producto"`
		Productos any `json:"productos"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if body.Productos != nil {
		h.scrapeMany(w, r, body.Productos)
		return
	}

	name, ok := body.Producto.(string)
	if !ok || strings.TrimSpace(name) == "" {
		respondError(w, r, h.logger, invalid("se requiere producto (texto) o productos (lista de textos)"))
		return
	}
	res, err := h.useCase.Scrape(r.Context(), name)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeData(w, map[string]any{
		"supermercado": h.useCase.ScrapeSource(),
		"producto":     strings.TrimSpace(name),
		"resultado":    res,
	})
}

func (h *ScrapeHandler) scrapeMany(w http.ResponseWriter, r *http.Request, v any) {
	raw, ok := v.([]any)
	if !ok || len(raw) == 0 {
		respondError(w, r, h.logger, invalid("productos debe ser una lista no vacía de textos"))
		return
	}
	if limit := h.useCase.MaxBatch(); len(raw) > limit {
		respondError(w, r, h.logger, invalid(fmt.Sprintf("se permiten como máximo %d productos por solicitud", limit)))
		return
	}

	products := make([]string, len(raw))
	for i, p := range raw {
		s, ok := p.(string)
		if !ok {
			respondError(w, r, h.logger, invalid("productos debe ser una lista no vacía de textos"))
			return
		}
		products[i] = s
	}

	results, err := h.useCase.ScrapeMany(r.Context(), products)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeData(w, map[string]any{
		"supermercado": h.useCase.ScrapeSource(),
		"resultados":   results,
	})
}

// Status handles GET /precios/scrape.
func (h *ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{
		"status":       "ok",
		"supermercado": h.useCase.ScrapeSource(),
		"fuentes":      h.useCase.Sources(),
		"maxProductos": h.useCase.MaxBatch(),
		"rateLimit": map[string]any{
			"limite":          h.limiter.Limit(),
			"ventanaSegundos": int(h.limiter.Window().Seconds()),
		},
	})
}

// clientIdentity is the first X-Forwarded-For address, then X-Real-IP,
// then the connection's remote host.
func clientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
