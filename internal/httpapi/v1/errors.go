package v1

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/networth/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }
func conflict(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusConflict, msg, code)
}
func unprocessable(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusUnprocessableEntity, msg, code)
}

// writeServiceError maps service and storage errors to status codes. Anything
// unrecognised is logged and reported as 500 without details.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid_request")
	case errors.Is(err, errs.ErrUnprocessable):
		unprocessable(w, err.Error(), "validation_error")
	case errors.Is(err, errs.ErrDuplicateDate):
		conflict(w, err.Error(), "duplicate_snapshot_date")
	case errors.Is(err, errs.ErrIdempotencyMismatch):
		conflict(w, err.Error(), "idempotency_mismatch")
	case errors.Is(err, errs.ErrConflict):
		conflict(w, err.Error(), "conflict")
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	default:
		s.log.Error(fallback, "req_id", chimw.GetReqID(r.Context()), "err", err)
		writeErr(w, http.StatusInternalServerError, fallback, "internal_error")
	}
}
