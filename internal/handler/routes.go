package handler

import (
	"net/http"

	"go-wiki-api/internal/logger"
	"go-wiki-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Tags       *TagHandler
	Categories *CategoryHandler
	Pages      *PageHandler
	Auth       *AuthHandler
	Admin      *AdminHandler
	SEO        *SeoHandler
	Health     *HealthHandler
}

// NewRouter creates and configures a new chi router.
//
// Every /v1 and /auth route runs through the pipeline with auditing on;
// mutating wiki routes and the admin routes also require a token.
func NewRouter(h Handlers, p *middleware.Pipeline, allowedOrigins []string, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	e := middleware.Error(log)
	public := p.Route(middleware.RouteOptions{Audit: true})
	protected := p.Route(middleware.RouteOptions{Audit: true, RequireAuth: true})

	r.Get("/healthz", h.Health.healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/robots.txt", h.SEO.robotsHandler)
	r.Get("/sitemap.xml", h.SEO.sitemapHandler)

	r.Route("/auth", func(r chi.Router) {
		r.With(public).Method(http.MethodPost, "/login", e(h.Auth.handleLogin))
		r.With(public).Method(http.MethodPost, "/register", e(h.Auth.handleRegister))
		r.With(protected).Method(http.MethodGet, "/refresh", e(h.Auth.handleRefresh))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/wiki", func(r chi.Router) {
			r.Route("/tag", func(r chi.Router) {
				r.With(public).Method(http.MethodGet, "/", e(h.Tags.list))
				r.With(public).Method(http.MethodGet, "/{id}", e(h.Tags.get))
				r.With(protected).Method(http.MethodPost, "/", e(h.Tags.create))
				r.With(protected).Method(http.MethodPut, "/{id}", e(h.Tags.update))
				r.With(protected).Method(http.MethodDelete, "/{id}", e(h.Tags.delete))
			})
			r.Route("/category", func(r chi.Router) {
				r.With(public).Method(http.MethodGet, "/", e(h.Categories.list))
				r.With(public).Method(http.MethodGet, "/{id}", e(h.Categories.get))
				r.With(protected).Method(http.MethodPost, "/", e(h.Categories.create))
				r.With(protected).Method(http.MethodPut, "/{id}", e(h.Categories.update))
				r.With(protected).Method(http.MethodDelete, "/{id}", e(h.Categories.delete))
			})
			r.Route("/page", func(r chi.Router) {
				r.With(public).Method(http.MethodGet, "/", e(h.Pages.list))
				r.With(public).Method(http.MethodGet, "/{id}", e(h.Pages.get))
				r.With(protected).Method(http.MethodPost, "/", e(h.Pages.create))
				r.With(protected).Method(http.MethodPut, "/{id}", e(h.Pages.update))
				r.With(protected).Method(http.MethodDelete, "/{id}", e(h.Pages.delete))
			})
		})

		r.With(protected).Method(http.MethodGet, "/user", e(h.Admin.listUsers))
		r.With(protected).Method(http.MethodGet, "/user/{id}", e(h.Admin.getUser))
		r.With(protected).Method(http.MethodGet, "/log", e(h.Admin.listLogs))
		r.With(protected).Method(http.MethodGet, "/log/{id}", e(h.Admin.getLog))
	})

	return r
}
