// Package handler provides the HTTP layer for the Bookworm API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig contains everything the router needs.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	BookHandler    *BookHandler
	AuthMiddleware func(http.Handler) http.Handler

	// MetricsMiddleware instruments requests (optional).
	MetricsMiddleware func(http.Handler) http.Handler

	// MetricsHandler serves /metrics (optional).
	MetricsHandler http.Handler

	// MediaDir, when non-empty, is served read-only under /media for the
	// filesystem blob backend.
	MediaDir string

	Logger zerolog.Logger
}

// NewRouter builds the API router. Auth routes are public; everything
// under /api/books passes through the session guard.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware)
	}
	r.Use(requestLogger(cfg.Logger))

	r.Get("/health", handleHealth)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	r.Route("/api/books", func(r chi.Router) {
		r.Use(cfg.AuthMiddleware)
		r.Post("/", cfg.BookHandler.Create)
		r.Get("/", cfg.BookHandler.List)
		r.Get("/user", cfg.BookHandler.ListMine)
		r.Delete("/{id}", cfg.BookHandler.Delete)
	})

	if cfg.MediaDir != "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir)))
		r.Get("/media/*", fs.ServeHTTP)
	}

	return r
}

// handleHealth handles health check requests.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// corsMiddleware applies the permissive CORS policy of the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request at debug level.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Msg("request")
		})
	}
}
