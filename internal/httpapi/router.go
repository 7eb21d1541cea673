package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thesahilsinghh/shoppers/internal/backend"
	"github.com/thesahilsinghh/shoppers/internal/cart"
	"github.com/thesahilsinghh/shoppers/internal/checkout"
	"github.com/thesahilsinghh/shoppers/internal/draftstore"
	"github.com/thesahilsinghh/shoppers/internal/orders"
)

type RouterDeps struct {
	Sessions       *cart.Sessions
	Histories      *orders.Histories
	DraftBuilder   *checkout.DraftBuilder
	Payments       checkout.PaymentClient
	DraftStore     draftstore.Store
	GraphQL        *backend.GraphQLClient
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) *chi.Mux {
	cartHandler := NewCartHandler(deps.Sessions, deps.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(deps.Sessions, deps.DraftBuilder, deps.Payments, deps.DraftStore, deps.Histories, deps.RequestTimeout)
	ordersHandler := NewOrdersHandler(deps.Histories, deps.RequestTimeout)
	authHandler := NewAuthHandler(deps.GraphQL, deps.Sessions, deps.Histories, deps.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(AuthMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Gateway return path; reached by full browser navigation, cookie auth.
	r.Get("/payment/callback", checkoutHandler.PaymentCallback)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Get("/orders", ordersHandler.ListOrders)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})
	})

	return r
}
