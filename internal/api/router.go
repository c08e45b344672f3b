/**
 * @description
 * This file sets up the HTTP router for the credits-service using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * logging, CORS, and authentication, and maps the routes to their
 * corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/imagify/credits-service/internal/token"
)

// NewRouter creates a new chi router and registers the credits-service
// routes.
func NewRouter(h *Handler, tokens *token.Service) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Credits service is healthy"))
	})

	r.Route("/api/user", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		// Verification is public: webhook redelivery and client polling both
		// land here, and the order id is the capability.
		r.Post("/verify-razor", h.handleVerifyPayment)

		// Protected routes that require a valid token
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens))

			r.Get("/credits", h.handleGetCredits)
			r.Get("/transactions", h.handleListPurchases)
			r.Post("/pay-razor", h.handleCreateOrder)
		})
	})

	return r
}
