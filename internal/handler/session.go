package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/balcao/balcao/internal/service"
)

// Authenticator signs users in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (service.Session, error)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionHandler serves the sign-in endpoint.
type SessionHandler struct {
	sessions Authenticator
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions Authenticator, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger.With("component", "http")}
}

// Login exchanges an e-mail and password for an access token.
// POST /api/v1/auth/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	var req LoginRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeFailure(w, r, h.logger, errMalformedBody)
			return
		}
	}

	session, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
