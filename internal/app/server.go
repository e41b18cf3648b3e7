package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/tochi-dev/medisync/internal/api/handlers"
	appMiddleware "github.com/tochi-dev/medisync/internal/api/middlewares"
	"github.com/tochi-dev/medisync/internal/config"
	"github.com/tochi-dev/medisync/internal/core"
	"github.com/tochi-dev/medisync/internal/core/airquality"
	"github.com/tochi-dev/medisync/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, resources *services.ResourceService, allocations *services.AllocationService, poller *airquality.Poller) *Server {
	authHandler := handlers.NewAuthHandler(db)
	resourceHandler := handlers.NewResourceHandler(resources)
	allocationHandler := handlers.NewAllocationHandler(allocations)
	airQualityHandler := handlers.NewAirQualityHandler(poller)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// The upload pipeline runs OCR and the AI call inside the request.
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// public endpoints
	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/login", authHandler.Login)

	// protected endpoints
	r.Group(func(protected chi.Router) {
		protected.Use(appMiddleware.JWTMiddleware)

		protected.Route("/resources", func(rt chi.Router) {
			rt.Post("/upload", resourceHandler.Upload)
			rt.Get("/", resourceHandler.List)
			rt.Get("/latest", resourceHandler.Latest)
			rt.Get("/aggregated", resourceHandler.Aggregated)
			rt.Get("/{id}", resourceHandler.Get)
			rt.Delete("/{id}", resourceHandler.Delete)
		})

		protected.Route("/allocations", func(rt chi.Router) {
			rt.Post("/", allocationHandler.Create)
			rt.Get("/", allocationHandler.List)
			rt.Post("/check-stock", allocationHandler.CheckStock)
			rt.Get("/{id}", allocationHandler.Get)
			rt.Put("/{id}", allocationHandler.Update)
			rt.Delete("/{id}", allocationHandler.Deallocate)
		})

		protected.Get("/air-quality", airQualityHandler.Latest)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
