package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
	"github.com/thesahilsinghh/shoppers/internal/draftstore"
)

const (
	// GatewaySuccessStatus must match exactly, the comparison is
	// case-sensitive.
	GatewaySuccessStatus = "SUCCESS"

	// ConfirmRedirectDelay is how long the confirmation stays on screen
	// before the UI moves on to the order history.
	ConfirmRedirectDelay = 3 * time.Second
	ConfirmRedirectPath  = "/orders"
)

// PaymentClient is the backend's payment surface.
type PaymentClient interface {
	InitiatePayment(ctx context.Context, cred auth.Credential, draft domain.OrderDraft) (string, error)
	VerifyPaymentAndCreateOrder(ctx context.Context, cred auth.Credential, referenceID string, draft domain.OrderDraft) (domain.Order, error)
}

// CallbackParams are the query parameters the gateway appends when it
// redirects the browser back.
type CallbackParams struct {
	ReferenceID string
	Status      string
}

// PaymentController drives one checkout attempt through
// NotStarted -> Initiating -> AwaitingGatewayRedirect -> VerifyingCallback
// -> Confirmed | Failed. The verification step runs at most once per
// controller no matter how often it is triggered.
type PaymentController struct {
	client PaymentClient
	store  draftstore.Store

	mu      sync.Mutex
	state   State
	claimed bool
	done    chan struct{}
	order   domain.Order
	outcome error
}

func NewPaymentController(client PaymentClient, store draftstore.Store) *PaymentController {
	return &PaymentController{
		client: client,
		store:  store,
		state:  StateNotStarted,
	}
}

func (c *PaymentController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initiate asks the backend for a gateway redirect URL tied to the draft.
// On failure the draft stays in storage so the user may retry.
func (c *PaymentController) Initiate(ctx context.Context, cred auth.Credential, draft domain.OrderDraft) (string, error) {
	if err := c.transition(StateInitiating); err != nil {
		return "", err
	}

	gatewayURL, err := c.client.InitiatePayment(ctx, cred, draft)
	if err != nil {
		c.setState(StateFailed)
		return "", fmt.Errorf("%w: %w", ErrInitiationFailed, err)
	}

	if err := c.transition(StateAwaitingGateway); err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"order_id": draft.OrderID}).Info("payment initiated, redirecting to gateway")
	return gatewayURL, nil
}

// HandleCallback runs the verification sequence. Concurrent or repeated
// triggers share the outcome of the single verification instead of calling
// the backend again.
func (c *PaymentController) HandleCallback(ctx context.Context, cred auth.Credential, params CallbackParams) (domain.Order, error) {
	c.mu.Lock()
	if c.claimed {
		done := c.done
		c.mu.Unlock()
		<-done
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.order, c.outcome
	}
	c.claimed = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	order, err := c.verify(ctx, cred, params)

	c.mu.Lock()
	c.order, c.outcome = order, err
	c.mu.Unlock()
	close(c.done)
	return order, err
}

func (c *PaymentController) verify(ctx context.Context, cred auth.Credential, params CallbackParams) (domain.Order, error) {
	if err := c.transition(StateVerifying); err != nil {
		return domain.Order{}, err
	}

	// Order matters: reference id first, then gateway status, then storage.
	if params.ReferenceID == "" {
		c.setState(StateFailed)
		return domain.Order{}, ErrMissingReference
	}

	if params.Status != "" && params.Status != GatewaySuccessStatus {
		c.setState(StateFailed)
		return domain.Order{}, fmt.Errorf("%w: status %q", ErrGatewayDeclined, params.Status)
	}

	draft, err := c.store.Get(ctx, cred.SessionKey())
	if errors.Is(err, draftstore.ErrDraftNotFound) {
		c.setState(StateFailed)
		return domain.Order{}, ErrDraftNotFound
	}
	if err != nil {
		c.setState(StateFailed)
		return domain.Order{}, fmt.Errorf("read pending draft: %w", err)
	}

	order, err := c.client.VerifyPaymentAndCreateOrder(ctx, cred, params.ReferenceID, draft)
	if err != nil {
		// Draft deliberately kept so the user can retry without
		// re-entering cart and address.
		c.setState(StateFailed)
		return domain.Order{}, fmt.Errorf("verify payment: %w", err)
	}

	if clearErr := c.store.Clear(ctx, cred.SessionKey()); clearErr != nil {
		log.WithError(clearErr).Warn("confirmed order but failed to clear draft slot")
	}
	c.setState(StateConfirmed)

	log.WithFields(log.Fields{
		"order_id":   order.OrderID,
		"payment_id": order.PaymentID,
		"total":      order.Total,
	}).Info("payment verified, order confirmed")
	return order, nil
}

func (c *PaymentController) transition(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !CanTransition(c.state, to) {
		return fmt.Errorf("%w: %s -> %s", IllegalTransitionError, c.state, to)
	}
	c.state = to
	return nil
}

func (c *PaymentController) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
