package handler

import (
	"log/slog"
	"net/http"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/auth"
	"github.com/vellt/eduinfo-api/internal/service"
)

// AuthHandler serves registration, login and session endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	As       string `json:"as"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.auth.Register(r.Context(), req.Email, req.Name, req.Password, req.As); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Sikeres regisztráció", nil)
}

// RegisterAdmin handles POST /auth/admin_reg and signs the fresh admin in.
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	token, err := h.auth.RegisterAdmin(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Sikeres regisztráció", service.TokenView{Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StandardLogin handles POST /auth/standard_login.
func (h *AuthHandler) StandardLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Sikeres bejelentezés", service.TokenView{Token: token})
}

// TokenLogin handles POST /auth/token_login: a valid token is traded for
// a fresh one.
func (h *AuthHandler) TokenLogin(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	userID, _ := auth.UserIDFromContext(r.Context())

	fresh, err := h.auth.Rotate(r.Context(), token, userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres bejelentezés", service.TokenView{Token: fresh})
}

// Logout handles PUT /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres kijelentkezés", nil)
}

// Role handles GET /auth/role; the role was resolved by the middleware.
func (h *AuthHandler) Role(w http.ResponseWriter, r *http.Request) {
	role, ok := auth.RoleFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, apperror.Resolution(apperror.AccountNotFound()))
		return
	}
	writeSuccess(w, http.StatusOK, "Sikeres azonosítás", service.RoleView{Role: role})
}
