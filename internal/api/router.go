package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/grantdoc/internal/api/middleware"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogger(s.logger, s.config.Verbose))
	r.Use(middleware.Recoverer(s.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Hello, World!"))
	})

	r.Get("/fetch-submissions", s.FetchSubmissions)

	// Document generation is expensive: rate limit by IP.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(s.limiter))
		r.Use(middleware.BodyLimit(s.config.MaxBodyBytes))

		r.Get("/generate", s.GenerateFirst)
		r.Get("/generate/{uniqueID}", s.GenerateByID)
		r.Post("/generate-pdf", s.GenerateUpload)
		r.Post("/preview", s.Preview)
	})

	r.Get("/generations", s.ListGenerations)
	r.Get("/generations/stats", s.GenerationStats)

	// Health check (public, no rate limit)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		JSONError(w, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		JSONError(w, &Error{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed", Status: http.StatusMethodNotAllowed})
	})

	return r
}
