package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yhkim-dev/member-portal/internal/auth/service"
	commonhttp "github.com/yhkim-dev/member-portal/internal/common/http"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	"github.com/yhkim-dev/member-portal/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Handler struct {
	auth    *service.AuthService
	log     *logger.Logger
	timeout time.Duration
}

func NewHandler(auth *service.AuthService, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{auth: auth, log: log, timeout: timeout}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", h.login)
	mux.HandleFunc("/api/auth/logout", h.logout)
	return mux
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.auth.Login(ctx, service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	token := session.BearerToken(r)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.auth.Logout(ctx, token); err != nil {
		h.log.Errorf("logout failed: %v", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil, "")
		return
	}
	commonhttp.NewErrorHandler(h.log).HandleError(w, r, err)
}
