package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"canasta/internal/adapter/source"
	"canasta/internal/application/usecase"
	"canasta/internal/domain/model"

	"github.com/go-chi/chi/v5/middleware"
)

// respondError maps an operation error onto a status and a client-safe
// message. Anything unrecognized is logged and answered with a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr validationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.msg)
	case errors.Is(err, source.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "demasiados productos en una sola solicitud")
	case errors.Is(err, model.ErrEmptyProduct):
		writeError(w, http.StatusBadRequest, "el campo producto es requerido")
	case errors.Is(err, model.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "el campo cantidad debe ser un número mayor que 0")
	case errors.Is(err, usecase.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "solicitud inválida")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("request timed out", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusGatewayTimeout, "tiempo de espera agotado")
	case errors.Is(err, context.Canceled):
		logger.Debug("request canceled by client", "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, "solicitud cancelada")
	default:
		logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}
