package handler

import (
	"context"
	"net/http"

	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"
	"go-wiki-api/internal/middleware"
	"go-wiki-api/internal/query"

	"github.com/go-chi/chi/v5"
)

// CategoryServicer is the category API the handlers need.
type CategoryServicer interface {
	List(ctx context.Context, opts query.Options) ([]data.Category, error)
	Get(ctx context.Context, id string) (*data.Category, error)
	Create(ctx context.Context, id, name, description string) (*data.Category, error)
	Update(ctx context.Context, id string, patch data.CategoryPatch) (*data.Category, error)
	Delete(ctx context.Context, id string) error
}

// CategoryHandler serves /v1/wiki/category.
type CategoryHandler struct {
	categories CategoryServicer
	log        logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories CategoryServicer, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, log: log}
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	opts, appErr := listOptions(r)
	if appErr != nil {
		return appErr
	}
	categories, err := h.categories.List(r.Context(), opts)
	if err != nil {
		return errorFrom(err, "Error getting categories")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
	return nil
}

func (h *CategoryHandler) get(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	category, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return errorFrom(err, "Error getting category")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"category": category})
	return nil
}

type createCategoryRequest struct {
	Category *struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"category"`
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req createCategoryRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if req.Category == nil {
		return middleware.NewError(http.StatusBadRequest, "body/missing-root-object", "Category is required")
	}
	c := req.Category
	if c.ID == "" || c.Name == "" {
		return middleware.NewError(http.StatusBadRequest, "body/invalid-object", "Category needs name and id.")
	}

	category, err := h.categories.Create(r.Context(), c.ID, c.Name, c.Description)
	if err != nil {
		return errorFrom(err, "Error creating category.")
	}
	auditInfo(r, h.log, "Created category "+category.ID)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"category": category})
	return nil
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req updateCategoryRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if req.Name == nil && req.Description == nil {
		return middleware.NewError(http.StatusBadRequest, "body/missing-root-object", "Either name and description is required.")
	}

	patch := data.CategoryPatch{Name: req.Name, Description: req.Description}
	category, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		return errorFrom(err, "Error editing category.")
	}
	auditInfo(r, h.log, "Edited category "+category.ID)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"category": category})
	return nil
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return errorFrom(err, "Error deleting category.")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"msg": "Category deleted."})
	return nil
}
