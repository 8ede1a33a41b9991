package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cabfleet/taxi-api/internal/domain"
)

// errorResponse is the JSON error envelope returned for every non-2xx response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures can only
// happen after the status line is written, so they are logged, not returned.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "encode response", "error", err)
	}
}

// writeError maps a service error onto the HTTP taxonomy:
// domain.ErrNotFound → 404, domain.ErrValidation → 422, everything else → 500.
// Internal errors are logged with the request context; their details are not
// leaked to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeJSON(w, r, http.StatusNotFound,
			errorResponse{Error: errorDetail{Code: "not_found", Message: "taxi not found"}})
	case errors.Is(err, domain.ErrValidation):
		s.writeJSON(w, r, http.StatusUnprocessableEntity,
			errorResponse{Error: errorDetail{Code: "validation_error", Message: validationMessage(err)}})
	default:
		s.log.ErrorContext(r.Context(), "handler error", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError,
			errorResponse{Error: errorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// writeValidationError rejects a request before it reaches the service layer
// (malformed body, bad path parameter).
func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	s.writeJSON(w, r, http.StatusUnprocessableEntity,
		errorResponse{Error: errorDetail{Code: "validation_error", Message: message}})
}

// validationMessage extracts the human-readable part from a wrapped
// domain.ErrValidation, e.g.
// "service.TaxiService.Create: validation error: year must be between 1900 and 2999"
// → "year must be between 1900 and 2999".
func validationMessage(err error) string {
	msg := err.Error()
	if _, after, found := strings.Cut(msg, domain.ErrValidation.Error()+": "); found {
		return after
	}
	return msg
}
