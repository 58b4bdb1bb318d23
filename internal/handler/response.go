// Package handler is the HTTP layer: it parses requests, calls the
// services, and writes the response envelopes. All business rules live one
// layer down.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tuanvq/soundrise/internal/apperror"
)

// Envelope is the uniform success body: the status code repeated for
// clients that don't inspect transport status, a human message, and the
// payload.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// ErrorEnvelope mirrors Envelope for failures. Error carries the HTTP
// status text, Message the human-readable detail.
type ErrorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Total    int `json:"total"`
}

// Page is the standard paginated payload.
type Page struct {
	Meta   PageMeta `json:"meta"`
	Result any      `json:"result"`
}

// NewPage assembles pagination metadata from the normalized options and the
// total row count.
func NewPage(current, pageSize, total int, result any) Page {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return Page{
		Meta:   PageMeta{Current: current, PageSize: pageSize, Pages: pages, Total: total},
		Result: result,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already sent; logging is all that's left.
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeData wraps the payload in the success envelope.
func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{StatusCode: status, Message: message, Data: data})
}

// writeError translates a domain error to its HTTP shape. This is the only
// place that mapping lives; handlers never pick status codes for errors.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "something went wrong"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrDuplicateEmail):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrInvalidCredentials), errors.Is(err, apperror.ErrInvalidToken):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		default:
			// A typed error without a mapping is still an internal
			// fault; don't leak its message.
			message = "something went wrong"
		}
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, ErrorEnvelope{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// decodeBody reads a JSON request body. A malformed body is a validation
// error, reported through the standard envelope.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "request body must be valid JSON")
	}
	return nil
}
