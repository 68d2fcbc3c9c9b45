package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"canasta/internal/application/usecase"
	"canasta/internal/domain/model"
)

const maxBodyBytes = 1 << 20

type PriceHandler struct {
	useCase *usecase.PriceUseCase
	logger  *slog.Logger
}

func NewPriceHandler(useCase *usecase.PriceUseCase, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// Search handles POST /precios/buscar {producto, cantidad?}.
func (h *PriceHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Producto any `json:"producto"`
		Cantidad any `json:"cantidad"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	name, ok := body.Producto.(string)
	if !ok || strings.TrimSpace(name) == "" {
		respondError(w, r, h.logger, invalid("el campo producto es requerido y debe ser texto"))
		return
	}
	qty, err := quantityOf(body.Cantidad)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	summary, err := h.useCase.Search(r.Context(), name, qty)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeData(w, summary)
}

// Compare handles GET /precios/comparar?items=a,b,c.
func (h *PriceHandler) Compare(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemsParam(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	report, err := h.useCase.Compare(r.Context(), items)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeData(w, report)
}

// OptimizeQuery handles GET /precios/optimizar?items=a,b,c, one unit each.
func (h *PriceHandler) OptimizeQuery(w http.ResponseWriter, r *http.Request) {
	names, err := h.itemsParam(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	items := make([]model.ProductQuery, 0, len(names))
	for _, n := range names {
		if q, err := model.NewProductQuery(n, 1); err == nil {
			items = append(items, q)
		}
	}
	h.optimize(w, r, items)
}

// OptimizeBody handles POST /precios/optimizar {items: [...]}. Each item is
// a product name or an object with nombre|name and cantidad|quantity.
// Items that do not resolve are skipped.
func (h *PriceHandler) OptimizeBody(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items any `json:"items"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	raw, ok := body.Items.([]any)
	if !ok {
		respondError(w, r, h.logger, invalid("el campo items debe ser una lista"))
		return
	}
	if len(raw) > h.useCase.MaxItems() {
		respondError(w, r, h.logger, invalid(fmt.Sprintf("se permiten como máximo %d items", h.useCase.MaxItems())))
		return
	}

	items := make([]model.ProductQuery, 0, len(raw))
	for _, v := range raw {
		if q, ok := parseItem(v); ok {
			items = append(items, q)
		}
	}
	h.optimize(w, r, items)
}

func (h *PriceHandler) optimize(w http.ResponseWriter, r *http.Request, items []model.ProductQuery) {
	if len(items) == 0 {
		respondError(w, r, h.logger, invalid("no se encontraron items válidos"))
		return
	}

	plan, err := h.useCase.Optimize(r.Context(), items)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeData(w, plan)
}

func (h *PriceHandler) itemsParam(r *http.Request) ([]string, error) {
	var items []string
	for _, part := range strings.Split(r.URL.Query().Get("items"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return nil, invalid("el parámetro items es requerido (lista separada por comas)")
	}
	if len(items) > h.useCase.MaxItems() {
		return nil, invalid(fmt.Sprintf("se permiten como máximo %d items", h.useCase.MaxItems()))
	}
	return items, nil
}

func parseItem(v any) (model.ProductQuery, bool) {
	switch it := v.(type) {
	case string:
		q, err := model.NewProductQuery(it, 1)
		return q, err == nil
	case map[string]any:
		name, _ := firstOf(it, "nombre", "name").(string)
		qty, err := quantityOf(firstOf(it, "cantidad", "quantity"))
		if err != nil {
			return model.ProductQuery{}, false
		}
		q, err := model.NewProductQuery(name, qty)
		return q, err == nil
	}
	return model.ProductQuery{}, false
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// quantityOf accepts an absent quantity (1) or a positive JSON number.
func quantityOf(v any) (float64, error) {
	if v == nil {
		return 1, nil
	}
	n, ok := v.(float64)
	if !ok || n <= 0 {
		return 0, invalid("el campo cantidad debe ser un número mayor que 0")
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalid("cuerpo JSON inválido")
	}
	return nil
}
