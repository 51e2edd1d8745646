package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/authkeeper/internal/common"
)

// Error is the structured error response body.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	errCodeBadRequest   = "bad_request"
	errCodeNotFound     = "not_found"
	errCodeUnauthorized = "unauthorized"
	errCodeForbidden    = "forbidden"
	errCodeInternal     = "internal_error"
	errCodeValidation   = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, errCodeBadRequest, message)
}

func writeUnprocessable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, errCodeValidation, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, errCodeUnauthorized, message)
}

// writeServiceError maps the typed errors of the lower layers onto status
// codes. The expired/invalid distinction is the only detail token failures
// expose.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		writeUnauthorized(w, "token expired")
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		writeUnauthorized(w, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, errCodeForbidden, "forbidden")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, errCodeNotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeBadRequest(w, "already exists")
	case errors.Is(err, common.ErrorValidation):
		writeBadRequest(w, "validation error")
	default:
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
	}
}
