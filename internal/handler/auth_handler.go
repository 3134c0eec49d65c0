package handler

import (
	"context"
	"errors"
	"net/http"

	"go-wiki-api/internal/logger"
	"go-wiki-api/internal/middleware"
	"go-wiki-api/internal/service"
)

// AuthServicer is the account API the auth handlers need.
type AuthServicer interface {
	Register(ctx context.Context, email, password, name string) (*service.Token, error)
	Login(ctx context.Context, email, password string) (*service.Token, error)
	Refresh(ctx context.Context, userID int64) (*service.Token, error)
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth AuthServicer
	log  logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a AuthServicer, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// handleLogin exchanges email and password for a token.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req credentials
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return errorFrom(err, "Error logging in")
	}
	middleware.WriteJSON(w, http.StatusOK, token)
	return nil
}

// handleRegister creates an account and logs it in.
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req credentials
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	token, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrMissingCredentials) {
			return middleware.NewError(http.StatusBadRequest, "auth/missing-credentials", "Email, password and name are required")
		}
		return errorFrom(err, "Error creating user")
	}
	auditInfo(r, h.log, "Registered user "+req.Name)
	middleware.WriteJSON(w, http.StatusOK, token)
	return nil
}

// handleRefresh issues a fresh token for the authenticated user.
func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetUserInfo(r.Context())
	token, err := h.auth.Refresh(r.Context(), user.ID)
	if err != nil {
		return errorFrom(err, "Error refreshing token")
	}
	middleware.WriteJSON(w, http.StatusOK, token)
	return nil
}
