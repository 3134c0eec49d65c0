package handler

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"
	"go-wiki-api/internal/query"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	pages   PageServicer
	baseURL string
	log     logger.Logger
}

// NewSeoHandler creates a new SeoHandler. baseURL is the public origin of
// the API, e.g. "https://wiki.example.com".
func NewSeoHandler(pages PageServicer, baseURL string, log logger.Logger) *SeoHandler {
	return &SeoHandler{pages: pages, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// robotsHandler serves robots.txt pointing at the sitemap.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /v1/wiki/")
	fmt.Fprintln(w, "Disallow: /v1/user")
	fmt.Fprintln(w, "Disallow: /v1/log")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Sitemap: "+h.baseURL+"/sitemap.xml")
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates and serves a dynamic sitemap.xml of all pages.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	pages, err := h.allPages(r.Context())
	if err != nil {
		h.log.Error(err, "Failed to retrieve pages for sitemap")
		http.Error(w, "Failed to retrieve pages for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, len(pages)),
	}
	for i, page := range pages {
		sitemap.URLs[i] = sitemapURL{
			Loc:     h.baseURL + "/v1/wiki/page/" + page.ID,
			LastMod: page.UpdatedAt.Format(sitemapDateFormat),
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		h.log.Error(err, "Failed to generate sitemap XML")
	}
}

// allPages walks the page list in MaxPageSize windows ordered by id.
func (h *SeoHandler) allPages(ctx context.Context) ([]data.WikiPage, error) {
	var all []data.WikiPage
	for page := 0; ; page++ {
		opts := query.Options{
			Pagination: &query.Pagination{Page: page, PageSize: query.MaxPageSize},
			Order:      &query.Order{Field: "id", Direction: query.Asc},
		}
		batch, err := h.pages.List(ctx, opts, data.PageFilter{})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < query.MaxPageSize {
			return all, nil
		}
	}
}
