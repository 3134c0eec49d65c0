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

// PageServicer is the page API the handlers need.
type PageServicer interface {
	List(ctx context.Context, opts query.Options, filter data.PageFilter) ([]data.WikiPage, error)
	Get(ctx context.Context, id string) (*data.WikiPage, error)
	Render(page *data.WikiPage) (string, error)
	Create(ctx context.Context, page *data.WikiPage, authorID int64) (*data.WikiPage, error)
	Update(ctx context.Context, id string, patch data.WikiPagePatch) (*data.WikiPage, error)
	Delete(ctx context.Context, id string) error
}

// PageHandler serves /v1/wiki/page.
type PageHandler struct {
	pages PageServicer
	log   logger.Logger
}

// NewPageHandler creates a new PageHandler with the given dependencies.
func NewPageHandler(pages PageServicer, log logger.Logger) *PageHandler {
	return &PageHandler{pages: pages, log: log}
}

// list accepts the shared list parameters plus tag and category, each
// repeated or comma separated. A page matches when it has any of the tags.
func (h *PageHandler) list(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	opts, appErr := listOptions(r)
	if appErr != nil {
		return appErr
	}
	v := r.URL.Query()
	filter := data.PageFilter{
		Tags:       query.List(v, "tag"),
		Categories: query.List(v, "category"),
	}
	pages, err := h.pages.List(r.Context(), opts, filter)
	if err != nil {
		return errorFrom(err, "Error getting pages")
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"pages": pages})
	return nil
}

// get returns a page. With ?render=html the sanitized HTML rendering of its
// markdown is included as "html".
func (h *PageHandler) get(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, err := h.pages.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return errorFrom(err, "Error getting page")
	}
	resp := map[string]interface{}{"page": page}
	if r.URL.Query().Get("render") == "html" {
		html, err := h.pages.Render(page)
		if err != nil {
			return middleware.Internal(err, "Error rendering page")
		}
		resp["html"] = html
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
	return nil
}

type createPageRequest struct {
	Page *struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		CategoryID string   `json:"categoryId"`
		Tags       []string `json:"tags"`
	} `json:"page"`
}

func (h *PageHandler) create(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req createPageRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if req.Page == nil {
		return middleware.NewError(http.StatusBadRequest, "body/missing-root-object", "Page is required")
	}
	p := req.Page
	if p.ID == "" || p.Title == "" || p.CategoryID == "" {
		return middleware.NewError(http.StatusBadRequest, "body/invalid-object", "Page needs id, title and categoryId.")
	}

	page := &data.WikiPage{ID: p.ID, Title: p.Title, Content: p.Content, CategoryID: p.CategoryID, Tags: p.Tags}
	user := middleware.GetUserInfo(r.Context())
	created, err := h.pages.Create(r.Context(), page, user.ID)
	if err != nil {
		return errorFrom(err, "Error creating page.")
	}
	auditInfo(r, h.log, "Created page "+created.ID)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"page": created})
	return nil
}

type updatePageRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	CategoryID *string   `json:"categoryId"`
	Tags       *[]string `json:"tags"`
}

func (h *PageHandler) update(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req updatePageRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if req.Title == nil && req.Content == nil && req.CategoryID == nil && req.Tags == nil {
		return middleware.NewError(http.StatusBadRequest, "body/missing-root-object", "One of title, content, categoryId or tags is required.")
	}

	patch := data.WikiPagePatch{Title: req.Title, Content: req.Content, CategoryID: req.CategoryID, Tags: req.Tags}
	page, err := h.pages.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		return errorFrom(err, "Error editing page.")
	}
	auditInfo(r, h.log, "Edited page "+page.ID)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"page": page})
	return nil
}

func (h *PageHandler) delete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	if err := h.pages.Delete(r.Context(), id); err != nil {
		return errorFrom(err, "Error deleting page.")
	}
	auditInfo(r, h.log, "Deleted page "+id)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"msg": "Page deleted."})
	return nil
}
