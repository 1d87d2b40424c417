package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	commonhttp "github.com/yhkim-dev/member-portal/internal/common/http"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	"github.com/yhkim-dev/member-portal/internal/member/domain"
	"github.com/yhkim-dev/member-portal/internal/member/service"
	"github.com/yhkim-dev/member-portal/internal/session"
)

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Address         string `json:"address"`
	PostalCode      string `json:"postalCode"`
}

type signupResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

type duplicateResponse struct {
	Duplicate bool `json:"duplicate"`
}

type profileResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

type updateProfileRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
}

type memberItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type paginationMeta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalMembers int  `json:"totalMembers"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

type memberListResponse struct {
	Members    []memberItem   `json:"members"`
	Pagination paginationMeta `json:"pagination"`
}

type Handler struct {
	members  *service.MemberService
	sessions *session.Service
	log      *logger.Logger
	errors   *commonhttp.ErrorHandler
	timeout  time.Duration
}

func NewHandler(members *service.MemberService, sessions *session.Service, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		members:  members,
		sessions: sessions,
		log:      log,
		errors:   commonhttp.NewErrorHandler(log),
		timeout:  timeout,
	}

	requireSession := session.Middleware(sessions, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/signup", h.signup)
	mux.HandleFunc("/api/check-duplicate", h.checkDuplicate)
	mux.Handle("/api/members", requireSession(http.HandlerFunc(h.listMembers)))
	mux.Handle("/api/profile/", requireSession(http.HandlerFunc(h.profile)))
	return mux
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req signupRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("signup failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := h.members.Register(ctx, service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Address:         req.Address,
		PostalCode:      req.PostalCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, signupResponse{
		Success: true,
		ID:      string(id),
		Message: "account created successfully",
	})
}

func (h *Handler) checkDuplicate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	field := r.URL.Query().Get("type")
	value := r.URL.Query().Get("value")
	if field == "" || value == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "type and value parameters are required", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	duplicate, err := h.members.CheckDuplicate(ctx, field, value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, duplicateResponse{Duplicate: duplicate})
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "page must be a number", nil, "")
			return
		}
		page = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.members.List(ctx, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]memberItem, 0, len(result.Members))
	for _, m := range result.Members {
		items = append(items, memberItem{
			ID:        string(m.ID),
			Name:      m.Name,
			Email:     m.Email,
			CreatedAt: m.CreatedAt,
		})
	}

	commonhttp.WriteJSON(w, http.StatusOK, memberListResponse{
		Members: items,
		Pagination: paginationMeta{
			CurrentPage:  result.CurrentPage,
			TotalPages:   result.TotalPages,
			TotalMembers: result.TotalMembers,
			HasNext:      result.HasNext,
			HasPrev:      result.HasPrev,
		},
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/profile/")
	if id == "" || strings.Contains(id, "/") {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "member id is required", nil, "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getProfile(w, r, domain.ID(id))
	case http.MethodPut:
		h.updateProfile(w, r, domain.ID(id))
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, id domain.ID) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profile, err := h.members.GetProfile(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, profileResponse{
		ID:         string(profile.ID),
		Name:       profile.Name,
		Email:      profile.Email,
		Address:    profile.Address,
		PostalCode: profile.PostalCode,
	})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, id domain.ID) {
	claims, ok := session.FromContext(r.Context())
	if !ok || claims.MemberID != string(id) {
		commonhttp.WriteErrorEnvelope(w, http.StatusForbidden, commonhttp.CodeForbidden, "cannot update another member's profile", nil, "")
		return
	}

	var req updateProfileRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("profile update failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	err := h.members.UpdateProfile(ctx, id, service.UpdateInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Address:    req.Address,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "profile updated successfully",
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if vErr, ok := service.AsValidationError(err); ok {
		details := make(map[string]any, len(vErr.Fields))
		for field, msg := range vErr.Fields {
			details[field] = msg
		}
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeValidationFailed, "validation failed", details, "")
		return
	}

	switch {
	case errors.Is(err, service.ErrNameTaken):
		commonhttp.WriteErrorEnvelope(w, http.StatusConflict, "NAME_ALREADY_EXISTS", "this name is already taken", map[string]any{"field": "name"}, "")
	case errors.Is(err, service.ErrEmailTaken):
		commonhttp.WriteErrorEnvelope(w, http.StatusConflict, "EMAIL_ALREADY_EXISTS", "this email is already in use", map[string]any{"field": "email"}, "")
	default:
		h.errors.HandleError(w, r, err)
	}
}
