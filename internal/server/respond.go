package server

import (
	"encoding/json"
	"io"
	"net/http"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// errorBody is the JSON shape of every failed request
type errorBody struct {
	Message   string           `json:"message"`
	Entity    string           `json:"entity,omitempty"`
	Field     string           `json:"field,omitempty"`
	Required  *decimal.Decimal `json:"required,omitempty"`
	Available *decimal.Decimal `json:"available,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("Write error", "error", err)
	}
}

// classify maps err onto an HTTP status and a client-facing body.
// Unclassified errors are internal; their text is only exposed when
// verbose is set.
func classify(err error, verbose bool) (int, errorBody) {
	var (
		notFound     *models.NotFoundError
		invalid      *models.ValidationError
		insufficient *models.InsufficientFundsError
		conflict     *models.ConflictError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{Message: notFound.Error(), Entity: notFound.Entity}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, errorBody{Message: invalid.Error(), Field: invalid.Field}
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, errorBody{
			Message:   "insufficient balance",
			Required:  &insufficient.Required,
			Available: &insufficient.Available,
		}
	case errors.As(err, &conflict):
		return http.StatusConflict, errorBody{Message: conflict.Error()}
	}

	body := errorBody{Message: "internal server error"}
	if verbose {
		body.Message = err.Error()
	}
	return http.StatusInternalServerError, body
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err, h.verbose)
	if status == http.StatusInternalServerError {
		logger.Log.Errorw("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		logger.Log.Debugw("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

// decodeBody strictly decodes a JSON request body into dst: unknown
// fields, trailing data and empty bodies are validation errors.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Invalid("", "request body is required")
		}
		return models.Invalid("", "invalid request body: "+err.Error())
	}
	if dec.More() {
		return models.Invalid("", "request body must contain a single JSON object")
	}
	return nil
}
