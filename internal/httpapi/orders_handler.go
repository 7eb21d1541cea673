package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
	"github.com/thesahilsinghh/shoppers/internal/orders"
)

type OrdersHandler struct {
	histories *orders.Histories
	timeout   time.Duration
}

func NewOrdersHandler(histories *orders.Histories, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		histories: histories,
		timeout:   timeout,
	}
}

// OrdersResponseDTO reports a fetch error as a value next to whatever orders
// were retained, so the list survives backend hiccups.
type OrdersResponseDTO struct {
	Orders []domain.Order `json:"orders"`
	Error  string         `json:"error,omitempty"`
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	limit := orders.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	history := h.histories.Get(cred)
	var (
		list []domain.Order
		err  error
	)
	if r.URL.Query().Get("refresh") == "true" {
		list, err = history.Refetch(ctx, limit)
	} else {
		list, err = history.List(ctx, limit)
	}

	if errors.Is(err, auth.ErrUnauthenticated) {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "session credential rejected")
		return
	}

	resp := OrdersResponseDTO{Orders: list}
	if err != nil {
		resp.Error = "failed to refresh orders"
	}
	respondJSON(w, http.StatusOK, resp)
}
