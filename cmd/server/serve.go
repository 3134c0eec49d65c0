package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-wiki-api/internal/audit"
	"go-wiki-api/internal/auth"
	"go-wiki-api/internal/cache"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/handler"
	"go-wiki-api/internal/middleware"
	"go-wiki-api/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// purgeInterval is how often expired entries are removed from a SQLite cache.
const purgeInterval = 10 * time.Minute

func serve(ctx context.Context, a *app) error {
	cfg, log := a.cfg, a.log
	if err := cfg.Validate(); err != nil {
		return err
	}
	tokenTTL, err := cfg.Auth.TokenTTL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("Connecting to the database...")
	store, err := openStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	prometheus.MustRegister(collectors.NewDBStatsCollector(store.DB().DB, "wiki"))
	log.Info("Database connection successful.")

	// --- Authentication and Authorization Setup ---
	enforcer, err := auth.NewEnforcer(store.DB(), cfg.Auth.PolicyModel)
	if err != nil {
		return err
	}
	if err := auth.SeedDefaultPolicies(enforcer); err != nil {
		return err
	}
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, tokenTTL)
	users := data.NewUserRepository(store)
	logs := data.NewLogRepository(store)

	// --- Cache Initialization ---
	entityCache, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer entityCache.Close()
	if sc, ok := entityCache.(*cache.SQLite); ok {
		go purgeLoop(ctx, sc, a)
	}

	// --- Dependency Injection and Handler Initialization ---
	cacheOpts := service.CacheOptions{TTL: cfg.Cache.TTL, Log: log}
	pages := service.NewPageService(data.NewPageRepository(store), entityCache, cacheOpts)
	handlers := handler.Handlers{
		Tags:       handler.NewTagHandler(service.NewTagService(data.NewTagRepository(store), entityCache, cacheOpts), log),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(data.NewCategoryRepository(store), entityCache, cacheOpts), log),
		Pages:      handler.NewPageHandler(pages, log),
		Auth:       handler.NewAuthHandler(service.NewAuthService(users, tokens, enforcer), log),
		Admin:      handler.NewAdminHandler(service.NewAdminService(users, logs)),
		SEO:        handler.NewSeoHandler(pages, cfg.Server.BaseURL, log),
		Health:     handler.NewHealthHandler(store, log),
	}
	pipeline := middleware.NewPipeline(
		auth.NewAuthenticator(tokens, users),
		audit.NewRecorder(logs, log),
		middleware.Authorizer(enforcer, log),
		log,
		cfg.Audit.FinalizeTimeout,
	)
	router := handler.NewRouter(handlers, pipeline, cfg.Server.CORS.AllowedOrigins, log)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			err = server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("could not start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Warn("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exiting")
	return nil
}

func purgeLoop(ctx context.Context, c *cache.SQLite, a *app) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.Purge(ctx)
			if err != nil {
				a.log.Error(err, "Failed to purge expired cache entries")
				continue
			}
			a.log.Debug(fmt.Sprintf("Purged %d expired cache entries", n))
		}
	}
}
