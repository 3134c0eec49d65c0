package handler

import (
	"context"
	"net/http"
	"strconv"

	"go-wiki-api/internal/data"
	"go-wiki-api/internal/middleware"
	"go-wiki-api/internal/query"

	"github.com/go-chi/chi/v5"
)

// AdminServicer is the read-only account and audit API.
type AdminServicer interface {
	ListUsers(ctx context.Context, opts query.Options) ([]data.User, error)
	GetUser(ctx context.Context, id int64) (*data.User, error)
	ListLogs(ctx context.Context, opts query.Options) ([]data.Log, error)
	GetLog(ctx context.Context, id string) (*data.Log, error)
}

// AdminHandler serves /v1/user and /v1/log.
type AdminHandler struct {
	admin AdminServicer
}

func NewAdminHandler(admin AdminServicer) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	opts, appErr := listOptions(r)
	if appErr != nil {
		return appErr
	}
	users, err := h.admin.ListUsers(r.Context(), opts)
	if err != nil {
		return errorFrom(err, "Error getting users")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
	return nil
}

func (h *AdminHandler) getUser(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Err: err, Status: http.StatusNotFound, Code: "object/not-found", Message: "Object not found"}
	}
	user, err := h.admin.GetUser(r.Context(), id)
	if err != nil {
		return errorFrom(err, "Error getting user")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	return nil
}

func (h *AdminHandler) listLogs(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	opts, appErr := listOptions(r)
	if appErr != nil {
		return appErr
	}
	logs, err := h.admin.ListLogs(r.Context(), opts)
	if err != nil {
		return errorFrom(err, "Error getting logs")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
	return nil
}

func (h *AdminHandler) getLog(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	l, err := h.admin.GetLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return errorFrom(err, "Error getting log")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"log": l})
	return nil
}
