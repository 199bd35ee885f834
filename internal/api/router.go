/**
 * @description
 * This file sets up the HTTP router for pygamentos. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication and rate limiting.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BarrosRichard/pygamentos/internal/app"
)

// Routes creates and returns the router for the payments service.
func Routes(h *Handlers, service *app.Service, limiter *app.RedisTransferRateLimiter, transferLimitPerMinute int) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public auth endpoints.
	r.Post("/auth/register", h.RegisterHandler)
	r.Post("/auth/login", h.LoginHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(service))

		// Money movement, rate limited per user.
		r.Group(func(r chi.Router) {
			r.Use(TransferRateLimitMiddleware(limiter, transferLimitPerMinute))
			r.Post("/transactions/transfer", h.TransferHandler)
			r.Post("/transactions/deposit", h.DepositHandler)
		})

		// Queries and tax catalog.
		r.Get("/transactions/balance", h.GetBalanceHandler)
		r.Get("/transactions/history", h.GetHistoryHandler)
		r.Get("/transactions/types", h.ListTransactionTypesHandler)
		r.Post("/transactions/types", h.CreateTransactionTypeHandler)
		r.Get("/transactions/types/{id}/tax", h.GetTransactionTaxHandler)

		// Pix key management.
		r.Get("/pix-keys", h.ListPixKeysHandler)
		r.Post("/pix-keys", h.CreatePixKeyHandler)
		r.Get("/pix-keys/resolve", h.ResolvePixKeyHandler)
		r.Get("/pix-keys/types", h.ListPixKeyTypesHandler)
		r.Post("/pix-keys/types", h.CreatePixKeyTypeHandler)

		// Credit card records.
		r.Get("/credit-cards", h.ListCreditCardsHandler)
		r.Post("/credit-cards", h.CreateCreditCardHandler)
		r.Delete("/credit-cards/{id}", h.DeleteCreditCardHandler)
	})

	return r
}
