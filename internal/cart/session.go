package cart

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
)

// BackendClient is the remote cart store. It is authoritative: every
// successful call returns the snapshot the server now holds.
type BackendClient interface {
	FetchCart(ctx context.Context, cred auth.Credential) (domain.CartSnapshot, error)
	AddItem(ctx context.Context, cred auth.Credential, productID string, quantity int) (domain.CartSnapshot, error)
	SetQuantity(ctx context.Context, cred auth.Credential, productID string, quantity int) (domain.CartSnapshot, error)
	RemoveItem(ctx context.Context, cred auth.Credential, productID string) (domain.CartSnapshot, error)
	ClearCart(ctx context.Context, cred auth.Credential) error
}

// Session mirrors one user's cart. The local snapshot is only ever replaced
// by server responses, never mutated optimistically, so a failed call leaves
// the last-known-good state untouched.
type Session struct {
	client BackendClient
	cred   auth.Credential

	mu       sync.Mutex
	snapshot domain.CartSnapshot
	inFlight bool
	gen      uint64

	sfg singleflight.Group
}

func NewSession(client BackendClient, cred auth.Credential) *Session {
	return &Session{client: client, cred: cred}
}

// Snapshot returns the last server-confirmed cart state.
func (s *Session) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Fetch rehydrates the snapshot from the backend. On failure the prior
// snapshot is retained and returned alongside ErrFetchFailed. Concurrent
// fetches for the same session collapse into one backend call.
func (s *Session) Fetch(ctx context.Context) (domain.CartSnapshot, error) {
	if s.cred.IsZero() {
		return s.Snapshot(), auth.ErrUnauthenticated
	}

	gen := s.generation()
	v, err, _ := s.sfg.Do("fetch", func() (any, error) {
		return s.client.FetchCart(ctx, s.cred)
	})
	if err != nil {
		log.WithError(err).Warn("cart fetch failed, keeping prior snapshot")
		return s.Snapshot(), fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	s.apply(gen, v.(domain.CartSnapshot))
	return s.Snapshot(), nil
}

func (s *Session) AddItem(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, func(ctx context.Context) (domain.CartSnapshot, error) {
		return s.client.AddItem(ctx, s.cred, productID, quantity)
	})
}

// SetQuantity sets the absolute quantity for a line. A quantity of zero or
// below removes the line instead.
func (s *Session) SetQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	return s.mutate(ctx, func(ctx context.Context) (domain.CartSnapshot, error) {
		return s.client.SetQuantity(ctx, s.cred, productID, quantity)
	})
}

func (s *Session) RemoveItem(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	return s.mutate(ctx, func(ctx context.Context) (domain.CartSnapshot, error) {
		return s.client.RemoveItem(ctx, s.cred, productID)
	})
}

func (s *Session) Clear(ctx context.Context) (domain.CartSnapshot, error) {
	return s.mutate(ctx, func(ctx context.Context) (domain.CartSnapshot, error) {
		if err := s.client.ClearCart(ctx, s.cred); err != nil {
			return domain.CartSnapshot{}, err
		}
		return domain.NewCartSnapshot(nil), nil
	})
}

func (s *Session) mutate(ctx context.Context, op func(context.Context) (domain.CartSnapshot, error)) (domain.CartSnapshot, error) {
	if s.cred.IsZero() {
		return s.Snapshot(), auth.ErrUnauthenticated
	}
	if err := s.begin(); err != nil {
		return s.Snapshot(), err
	}
	defer s.end()

	gen := s.generation()
	snap, err := op(ctx)
	if err != nil {
		log.WithError(err).Warn("cart mutation failed, state unchanged")
		return s.Snapshot(), fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}

	s.apply(gen, snap)
	return s.Snapshot(), nil
}

// begin marks a mutation outstanding; a second mutation started before the
// first resolves is rejected rather than interleaved.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrMutationInFlight
	}
	s.inFlight = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// apply installs a server snapshot unless the session was reset while the
// request was in flight; a stale response is discarded, not applied.
func (s *Session) apply(gen uint64, snap domain.CartSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.snapshot = snap
}

// Reset drops local state on logout. Responses from requests started before
// the reset will be discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.snapshot = domain.CartSnapshot{}
}
