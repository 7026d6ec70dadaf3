package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routes for the order service
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.HealthCheck)
	r.Get("/menu", handler.GetMenu)
	r.Get("/config", handler.GetConfig)

	r.Post("/orders", handler.CreateOrder)
	r.Get("/orders", handler.ListOrders)
	r.Get("/orders/{id}", handler.GetOrder)
	r.Patch("/orders/{id}/status", handler.UpdateStatus)
	r.Post("/orders/{id}/pay", handler.PayOrder)

	return r
}
