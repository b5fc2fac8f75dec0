// Package server exposes the ingestion core over a small JSON api and an RSS export.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/ratelimit"
	"github.com/umputun/tradescope/pkg/scheduler"
	"github.com/umputun/tradescope/pkg/service"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/service.go -pkg mocks -skip-ensure -fmt goimports . Service

// Server represents HTTP server instance
type Server struct {
	config  ConfigProvider
	svc     Service
	version string
	debug   bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Service is the ingestion core api used by handlers
type Service interface {
	ListLatestMessages(ctx context.Context, platform *domain.Platform, limit int) ([]domain.Message, error)
	SetMessageVisibility(ctx context.Context, id int64, visible bool) error
	AddSource(ctx context.Context, platform domain.Platform, handle string) (*domain.Source, error)
	RemoveSource(ctx context.Context, id int64, purge bool) error
	ListSources(ctx context.Context, platform *domain.Platform, activeOnly bool) ([]domain.Source, error)
	GetRateLimitStatus() map[string]ratelimit.Usage
	PlatformStatus(ctx context.Context) ([]domain.PlatformStatus, error)
	RefreshNow(ctx context.Context, platform domain.Platform) error
	UpdateSetting(ctx context.Context, key, value string) error
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetBaseURL() string
}

// New initializes a new server instance
func New(cfg ConfigProvider, svc Service, version string, debug bool) *Server {
	s := &Server{
		config:  cfg,
		svc:     svc,
		version: version,
		debug:   debug,
		router:  routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	// manual refresh runs a whole tick in the request, so only reads are bound by the timeout
	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		IdleTimeout:       timeout,
	}
	srv := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("tradescope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /ratelimits", s.rateLimitsHandler)

		r.HandleFunc("GET /messages", s.listMessagesHandler)
		r.HandleFunc("POST /messages/{id}/visibility", s.visibilityHandler)

		r.HandleFunc("GET /sources", s.listSourcesHandler)
		r.HandleFunc("POST /sources", s.addSourceHandler)
		r.HandleFunc("DELETE /sources/{id}", s.removeSourceHandler)

		r.HandleFunc("POST /refresh/{platform}", s.refreshHandler)
		r.HandleFunc("PUT /settings/{key}", s.updateSettingHandler)
	})

	s.router.HandleFunc("GET /rss", s.rssHandler)
	s.router.HandleFunc("GET /rss/{platform}", s.rssHandler)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}

// errorCode maps service errors to http status codes
func errorCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrBusy), errors.Is(err, scheduler.ErrDisabled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotConfigured), errors.Is(err, domain.ErrUnauthorized), errors.Is(err, scheduler.ErrNotRunning):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
