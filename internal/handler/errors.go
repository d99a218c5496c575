package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/balcao/balcao/internal/action"
	"github.com/balcao/balcao/internal/auth"
	"github.com/balcao/balcao/internal/middleware"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/service"
	"github.com/balcao/balcao/internal/store"
	"github.com/balcao/balcao/internal/validator"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeRestricted         = "RESTRICTED"
	CodeValidation         = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeMalformedBody      = "MALFORMED_BODY"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="balcao"`)
	}
	writeJSON(w, status, body)
}

// writeFailure maps err onto a status code and error body. Unexpected errors
// are logged and reported without detail.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		forbidden  *policy.ForbiddenError
		restricted *action.RestrictedError
		invalid    *validator.ValidationError
	)

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: CodeUnauthenticated})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: CodeInvalidCredentials})
	case errors.As(err, &forbidden):
		writeError(w, http.StatusForbidden, ErrorResponse{Error: forbidden.Error(), Code: CodeForbidden})
	case errors.As(err, &restricted):
		writeError(w, http.StatusForbidden, ErrorResponse{Error: restricted.Error(), Code: CodeRestricted})
	case errors.Is(err, validator.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "request body is not valid JSON", Code: CodeMalformedBody})
	case errors.As(err, &invalid):
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid input", Code: CodeValidation, Fields: invalid.Fields})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "resource not found", Code: CodeNotFound})
	case middleware.IsBodyTooLarge(err):
		writeError(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large", Code: CodePayloadTooLarge})
	case errors.Is(err, errMalformedBody):
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeMalformedBody})
	default:
		logger.Error("request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal})
	}
}
