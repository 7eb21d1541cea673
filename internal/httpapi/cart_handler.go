package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/cart"
	"github.com/thesahilsinghh/shoppers/internal/domain"
)

type CartHandler struct {
	sessions *cart.Sessions
	timeout  time.Duration
}

func NewCartHandler(sessions *cart.Sessions, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartResponseDTO carries the snapshot; the totals double as the item-count
// badge refresh after every successful mutation. A non-empty Warning means a
// read degraded gracefully and the snapshot is the retained prior state.
type CartResponseDTO struct {
	Cart    domain.CartSnapshot `json:"cart"`
	Warning string              `json:"warning,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	snap, err := h.sessions.Get(cred).Fetch(ctx)
	if errors.Is(err, cart.ErrFetchFailed) {
		// Non-fatal: keep serving the last-known-good snapshot.
		respondJSON(w, http.StatusOK, CartResponseDTO{Cart: snap, Warning: "cart fetch failed"})
		return
	}
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: snap})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	snap, err := h.sessions.Get(cred).AddItem(ctx, req.ProductID, req.Quantity)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CartResponseDTO{Cart: snap})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// Zero and below delegate to removal, anything above 99 is rejected.
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	snap, err := h.sessions.Get(cred).SetQuantity(ctx, productID, req.Quantity)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: snap})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	snap, err := h.sessions.Get(cred).RemoveItem(ctx, productID)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: snap})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	snap, err := h.sessions.Get(cred).Clear(ctx)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: snap})
}

func (h *CartHandler) handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "session credential rejected")
	case errors.Is(err, cart.ErrMutationInFlight):
		respondError(w, http.StatusConflict, "mutation_in_flight", "another cart update is still outstanding")
	case errors.Is(err, cart.ErrMutationFailed), errors.Is(err, cart.ErrFetchFailed):
		respondError(w, http.StatusBadGateway, "cart_backend_unavailable", "cart backend request failed")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
