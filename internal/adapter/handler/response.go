package handler

import (
	"encoding/json"
	"net/http"
)

const internalErrorMessage = "error interno del servidor"

type envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	RetryAfter *int   `json:"retryAfter,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}

// validationError is a 400 with a message about the offending field.
type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

func invalid(msg string) error { return validationError{msg: msg} }
