package checkout

import (
	"context"
	"sync"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
	"github.com/thesahilsinghh/shoppers/internal/draftstore"
)

// mockStore implements draftstore.Store in memory, counting accesses.
type mockStore struct {
	mu       sync.Mutex
	drafts   map[string]domain.OrderDraft
	putErr   error
	getCalls int
}

func newMockStore() *mockStore {
	return &mockStore{drafts: make(map[string]domain.OrderDraft)}
}

func (s *mockStore) Put(_ context.Context, sessionKey string, draft domain.OrderDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.drafts[sessionKey] = draft
	return nil
}

func (s *mockStore) Get(_ context.Context, sessionKey string) (domain.OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	draft, ok := s.drafts[sessionKey]
	if !ok {
		return domain.OrderDraft{}, draftstore.ErrDraftNotFound
	}
	return draft, nil
}

func (s *mockStore) Clear(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionKey)
	return nil
}

func (s *mockStore) stored(sessionKey string) (domain.OrderDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionKey]
	return draft, ok
}

// mockPaymentClient counts backend calls and returns canned results.
type mockPaymentClient struct {
	mu          sync.Mutex
	gatewayURL  string
	initiateErr error
	order       domain.Order
	verifyErr   error

	initiateCalls int
	verifyCalls   int
}

func (c *mockPaymentClient) InitiatePayment(_ context.Context, _ auth.Credential, _ domain.OrderDraft) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initiateCalls++
	if c.initiateErr != nil {
		return "", c.initiateErr
	}
	return c.gatewayURL, nil
}

func (c *mockPaymentClient) VerifyPaymentAndCreateOrder(_ context.Context, _ auth.Credential, _ string, draft domain.OrderDraft) (domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifyCalls++
	if c.verifyErr != nil {
		return domain.Order{}, c.verifyErr
	}
	order := c.order
	if order.OrderID == "" {
		order = domain.Order{
			OrderID: draft.OrderID,
			Status:  domain.OrderStatusConfirmed,
			Total:   draft.Total(),
			Items:   draft.Items,
			Address: draft.Address,
		}
	}
	return order, nil
}

func (c *mockPaymentClient) verifyCallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifyCalls
}
