package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/cart"
	"github.com/thesahilsinghh/shoppers/internal/checkout"
	"github.com/thesahilsinghh/shoppers/internal/domain"
	"github.com/thesahilsinghh/shoppers/internal/draftstore"
	"github.com/thesahilsinghh/shoppers/internal/orders"
)

// callbackReferenceParam is the query parameter the gateway uses for the
// payment reference id on the redirect back.
const (
	callbackReferenceParam = "EdvironCollectRequestId"
	callbackStatusParam    = "status"
)

type CheckoutHandler struct {
	sessions  *cart.Sessions
	builder   *checkout.DraftBuilder
	payments  checkout.PaymentClient
	store     draftstore.Store
	histories *orders.Histories
	timeout   time.Duration

	// One controller per payment reference, so duplicate callback hits for
	// the same reference share a single verification.
	mu          sync.Mutex
	controllers map[string]*checkout.PaymentController
}

func NewCheckoutHandler(
	sessions *cart.Sessions,
	builder *checkout.DraftBuilder,
	payments checkout.PaymentClient,
	store draftstore.Store,
	histories *orders.Histories,
	timeout time.Duration,
) *CheckoutHandler {
	return &CheckoutHandler{
		sessions:    sessions,
		builder:     builder,
		payments:    payments,
		store:       store,
		histories:   histories,
		timeout:     timeout,
		controllers: make(map[string]*checkout.PaymentController),
	}
}

type CheckoutRequestDTO struct {
	Address domain.Address `json:"address"`
}

type CheckoutResponseDTO struct {
	OrderID    string  `json:"order_id"`
	PaymentURL string  `json:"payment_url"`
	Total      float64 `json:"total"`
}

type CallbackResponseDTO struct {
	Order           domain.Order `json:"order"`
	RedirectTo      string       `json:"redirect_to"`
	RedirectAfterMS int64        `json:"redirect_after_ms"`
}

// Checkout builds the pending draft from the current cart snapshot and asks
// the backend for a gateway URL. The browser performs the actual navigation;
// once it does, there is no in-app way back until the gateway redirects.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session := h.sessions.Get(cred)
	snapshot := session.Snapshot()
	if snapshot.IsEmpty() {
		// Fresh process or first request of the session: rehydrate from
		// the remote cart store before deciding the cart is empty.
		var err error
		if snapshot, err = session.Fetch(ctx); err != nil && !errors.Is(err, cart.ErrFetchFailed) {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "session credential rejected")
			return
		}
	}

	draft, err := h.builder.Build(ctx, cred, snapshot, req.Address)
	if err != nil {
		h.handleDraftError(w, err)
		return
	}

	controller := checkout.NewPaymentController(h.payments, h.store)
	gatewayURL, err := controller.Initiate(ctx, cred, draft)
	if err != nil {
		// Draft stays in its slot, the user may retry initiation.
		respondErrorDetails(w, http.StatusBadGateway, "payment_initiation_failed",
			"could not start a payment session", "retry checkout to try again")
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		OrderID:    draft.OrderID,
		PaymentURL: gatewayURL,
		Total:      draft.Total(),
	})
}

// PaymentCallback is the gateway return path. Verification for one payment
// reference runs at most once no matter how often the browser replays the
// URL.
func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cred, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing session credential")
		return
	}

	params := checkout.CallbackParams{
		ReferenceID: r.URL.Query().Get(callbackReferenceParam),
		Status:      r.URL.Query().Get(callbackStatusParam),
	}

	order, err := h.controllerFor(params.ReferenceID).HandleCallback(ctx, cred, params)
	if err != nil {
		h.handleCallbackError(w, err)
		return
	}

	// Keep the history list current for the post-confirmation redirect.
	go func() {
		refreshCtx, refreshCancel := context.WithTimeout(context.Background(), h.timeout)
		defer refreshCancel()
		if _, refreshErr := h.histories.Get(cred).Refetch(refreshCtx, orders.DefaultLimit); refreshErr != nil {
			log.WithError(refreshErr).Warn("order history refresh after confirmation failed")
		}
	}()

	delay := checkout.ConfirmRedirectDelay
	w.Header().Set("Refresh", fmt.Sprintf("%d;url=%s", int(delay.Seconds()), checkout.ConfirmRedirectPath))
	respondJSON(w, http.StatusOK, CallbackResponseDTO{
		Order:           order,
		RedirectTo:      checkout.ConfirmRedirectPath,
		RedirectAfterMS: delay.Milliseconds(),
	})
}

func (h *CheckoutHandler) controllerFor(referenceID string) *checkout.PaymentController {
	if referenceID == "" {
		// Missing reference fails inside the controller; no point keying
		// an empty id.
		return checkout.NewPaymentController(h.payments, h.store)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.controllers[referenceID]; ok {
		return c
	}
	c := checkout.NewPaymentController(h.payments, h.store)
	h.controllers[referenceID] = c
	return c
}

func (h *CheckoutHandler) handleDraftError(w http.ResponseWriter, err error) {
	var validation *checkout.ValidationError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to check out")
	case errors.As(err, &validation):
		respondErrorDetails(w, http.StatusBadRequest, "validation_error",
			"shipping address is incomplete", validation.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "session credential rejected")
	default:
		respondError(w, http.StatusBadGateway, "draft_persist_failed", "could not persist pending order")
	}
}

func (h *CheckoutHandler) handleCallbackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrMissingReference):
		respondError(w, http.StatusBadRequest, "missing_payment_reference", "payment reference id is missing")
	case errors.Is(err, checkout.ErrGatewayDeclined):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "payment_declined",
			"payment was declined by the gateway", "re-enter checkout to retry")
	case errors.Is(err, checkout.ErrDraftNotFound):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "draft_not_found",
			"pending order not found, possibly already processed", "re-enter checkout to retry")
	case errors.Is(err, auth.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "session credential rejected")
	default:
		respondError(w, http.StatusBadGateway, "payment_verification_failed", "could not verify the payment")
	}
}
