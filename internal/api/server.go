// Package api provides the HTTP API server and handlers for the ReadRoom application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/readroomapp/readroom-server/internal/media/images"
	"github.com/readroomapp/readroom-server/internal/service"
	"github.com/readroomapp/readroom-server/internal/store"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	Catalog *service.CatalogService
	Shelf   *service.ShelfService
	Library *service.LibraryService
	Review  *service.ReviewService
	Genre   *service.GenreService
	Tag     *service.TagService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	covers          *images.Storage
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, covers *images.Storage, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	authRateLimiter := NewRateLimiter(20, time.Minute, 10)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(rateLimitAuthRoutes(authRateLimiter, logger))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("ReadRoom API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		covers:          covers,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: authRateLimiter,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerCoverRoutes()
	s.registerShelfRoutes()
	s.registerLibraryRoutes()
	s.registerReviewRoutes()
	s.registerGenreRoutes()
	s.registerTagRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server resources.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}
