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

// TagServicer is the tag API the handlers need.
type TagServicer interface {
	List(ctx context.Context, opts query.Options) ([]data.Tag, error)
	Get(ctx context.Context, id string) (*data.Tag, error)
	Create(ctx context.Context, id, name string) (*data.Tag, error)
	Update(ctx context.Context, id string, patch data.TagPatch) (*data.Tag, error)
	Delete(ctx context.Context, id string) error
}

// TagHandler serves /v1/wiki/tag.
type TagHandler struct {
	tags TagServicer
	log  logger.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tags TagServicer, log logger.Logger) *TagHandler {
	return &TagHandler{tags: tags, log: log}
}

func (h *TagHandler) list(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	opts, appErr := listOptions(r)
	if appErr != nil {
		return appErr
	}
	tags, err := h.tags.List(r.Context(), opts)
	if err != nil {
		return errorFrom(err, "Error getting tags")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
	return nil
}

func (h *TagHandler) get(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	tag, err := h.tags.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return errorFrom(err, "Error getting tag")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"tag": tag})
	return nil
}

type createTagRequest struct {
	Tag *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"tag"`
}

func (h *TagHandler) create(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req createTagRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if req.Tag == nil {
		return middleware.NewError(http.StatusBadRequest, "body/missing-root-object", "Tag is required")
	}
	if req.Tag.ID == "" || req.Tag.Name == "" {
		return middleware.NewError(http.StatusBadRequest, "body/invalid-object", "Tag needs name and id.")
	}

	tag, err := h.tags.Create(r.Context(), req.Tag.ID, req.Tag.Name)
	if err != nil {
		return errorFrom(err, "Error creating tag.")
	}
	auditInfo(r, h.log, "Created tag "+tag.ID)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"tag": tag})
	return nil
}

type updateTagRequest struct {
	Name *string `json:"name"`
}

func (h *TagHandler) update(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req updateTagRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if req.Name == nil {
		return middleware.NewError(http.StatusBadRequest, "body/missing-root-object", "Name is required.")
	}

	tag, err := h.tags.Update(r.Context(), chi.URLParam(r, "id"), data.TagPatch{Name: req.Name})
	if err != nil {
		return errorFrom(err, "Error editing tag.")
	}
	auditInfo(r, h.log, "Edited tag "+tag.ID)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"tag": tag})
	return nil
}

func (h *TagHandler) delete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.tags.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return errorFrom(err, "Error deleting tag.")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"msg": "Tag deleted."})
	return nil
}
