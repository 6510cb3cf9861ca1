/**
 * @description
 * This file sets up the HTTP router for the account-service using the
 * go-chi/chi router, applying the standard middleware stack and mapping
 * routes to their handlers.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the account-service routes.
func NewRouter(h *AccountHandlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccountHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetAccountHandler)
			r.Delete("/", h.CloseAccountHandler)
			r.Post("/block", h.BlockAccountHandler)
			r.Post("/unblock", h.UnblockAccountHandler)
			r.Get("/balance", h.GetBalanceHandler)
			r.Post("/deposit", h.DepositHandler)
			r.Post("/withdraw", h.WithdrawHandler)
			r.Get("/statement", h.GetStatementHandler)
		})
	})

	return r
}
