package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/mde-calculator/internal/config"
)

// SetupRoutes configures the router: middleware stack, CORS from config,
// the unauthenticated health check, and the /api route group.
func SetupRoutes(cfg *config.Config, svc *MDEService) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// Server identity header
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "mde-calculator-v1.0")
			next.ServeHTTP(w, req)
		})
	})

	// CORS - explicit origins from config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", svc.HandleHealth)

	// Calculator routes
	r.Route("/api", func(r chi.Router) {
		svc.RegisterRoutes(r)
	})

	return r
}
