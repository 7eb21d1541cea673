package orders

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
)

const DefaultLimit = 10

// Client is the backend's order history surface. Ordering is
// server-determined, most recent first.
type Client interface {
	Orders(ctx context.Context, cred auth.Credential, limit int) ([]domain.Order, error)
}

// History caches one user's order list. A failed refresh keeps the
// previously loaded orders available and reports the error as a value.
type History struct {
	client Client
	cred   auth.Credential

	mu     sync.Mutex
	cached []domain.Order
	loaded bool
}

func NewHistory(client Client, cred auth.Credential) *History {
	return &History{client: client, cred: cred}
}

// List returns the cached orders, fetching them on first use. On error the
// retained list is returned together with the error so the UI can keep
// showing it.
func (h *History) List(ctx context.Context, limit int) ([]domain.Order, error) {
	h.mu.Lock()
	if h.loaded {
		cached := h.cached
		h.mu.Unlock()
		return cached, nil
	}
	h.mu.Unlock()

	return h.Refetch(ctx, limit)
}

// Refetch bypasses the retained copy; used after order-affecting mutations
// such as a confirmed payment.
func (h *History) Refetch(ctx context.Context, limit int) ([]domain.Order, error) {
	if h.cred.IsZero() {
		return nil, auth.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	fetched, err := h.client.Orders(ctx, h.cred, limit)
	if err != nil {
		log.WithError(err).Warn("order history fetch failed, serving retained list")
		h.mu.Lock()
		cached := h.cached
		h.mu.Unlock()
		return cached, err
	}

	h.mu.Lock()
	h.cached = fetched
	h.loaded = true
	h.mu.Unlock()
	return fetched, nil
}

// Histories hands out one History per user, mirroring the cart session
// registry lifecycle.
type Histories struct {
	client Client

	mu    sync.Mutex
	byKey map[string]*History
}

func NewHistories(client Client) *Histories {
	return &Histories{
		client: client,
		byKey:  make(map[string]*History),
	}
}

func (r *Histories) Get(cred auth.Credential) *History {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cred.SessionKey()
	if h, ok := r.byKey[key]; ok {
		return h
	}
	h := NewHistory(r.client, cred)
	r.byKey[key] = h
	return h
}

func (r *Histories) Drop(cred auth.Credential) {
	r.mu.Lock()
	delete(r.byKey, cred.SessionKey())
	r.mu.Unlock()
}
