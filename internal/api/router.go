package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/husaynirfan1/lukisan-server/internal/api/handlers"
	"github.com/husaynirfan1/lukisan-server/internal/api/middleware"
	"github.com/husaynirfan1/lukisan-server/internal/blob"
	"github.com/husaynirfan1/lukisan-server/internal/config"
	"github.com/husaynirfan1/lukisan-server/internal/gueststore"
	"github.com/husaynirfan1/lukisan-server/internal/repository"
	"github.com/husaynirfan1/lukisan-server/internal/service"
)

func NewRouter(services *service.Services, store *gueststore.Store, blobs *blob.Store, repos *repository.Repositories, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	guestHandler := handlers.NewGuestHandler(store, services.GuestSession)
	transferHandler := handlers.NewTransferHandler(services.Transfer, services.Credit, logger)
	logoHandler := handlers.NewLogoHandler(repos.Logo, blobs)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth, logger))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Guest routes, usable before sign-in
		r.Route("/guest", func(r chi.Router) {
			r.Get("/session", guestHandler.GetSession)
			r.Delete("/session", guestHandler.ClearSession)
			r.Post("/assets", guestHandler.CreateAsset)
			r.Get("/assets", guestHandler.ListAssets)
			r.Get("/assets/{id}/payload", guestHandler.GetAssetPayload)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth, logger))

			r.Post("/transfer", transferHandler.Transfer)
			r.Get("/credits", transferHandler.Credits)

			r.Route("/logos", func(r chi.Router) {
				r.Get("/", logoHandler.List)
				r.Get("/{id}/payload", logoHandler.GetPayload)
			})
		})
	})

	return r
}
