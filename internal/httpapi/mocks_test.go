package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
	"github.com/thesahilsinghh/shoppers/internal/draftstore"
)

const testTimeout = 2 * time.Second

func testCred() auth.Credential {
	return auth.Credential{Token: "token-1"}
}

// authed attaches the credential the way AuthMiddleware would.
func authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithCredential(r.Context(), testCred()))
}

// withURLParam injects a chi route parameter for direct handler calls.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// stubCartBackend is an in-memory cart store with injectable failures.
type stubCartBackend struct {
	mu    sync.Mutex
	lines map[string]domain.CartLine
	err   error

	lastAddQuantity int
	removeCalls     int
}

func newStubCartBackend() *stubCartBackend {
	return &stubCartBackend{lines: make(map[string]domain.CartLine)}
}

func (b *stubCartBackend) seed(lines ...domain.CartLine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range lines {
		b.lines[l.Product.ID] = l
	}
}

func (b *stubCartBackend) snapshot() domain.CartSnapshot {
	lines := make([]domain.CartLine, 0, len(b.lines))
	for _, l := range b.lines {
		lines = append(lines, l)
	}
	return domain.NewCartSnapshot(lines)
}

func (b *stubCartBackend) FetchCart(_ context.Context, _ auth.Credential) (domain.CartSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return domain.CartSnapshot{}, b.err
	}
	return b.snapshot(), nil
}

func (b *stubCartBackend) AddItem(_ context.Context, _ auth.Credential, productID string, quantity int) (domain.CartSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return domain.CartSnapshot{}, b.err
	}
	b.lastAddQuantity = quantity
	line := b.lines[productID]
	line.Product.ID = productID
	if line.Product.Price == 0 {
		line.Product.Price = 10
	}
	line.Quantity += quantity
	b.lines[productID] = line
	return b.snapshot(), nil
}

func (b *stubCartBackend) SetQuantity(_ context.Context, _ auth.Credential, productID string, quantity int) (domain.CartSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return domain.CartSnapshot{}, b.err
	}
	line := b.lines[productID]
	line.Product.ID = productID
	line.Quantity = quantity
	b.lines[productID] = line
	return b.snapshot(), nil
}

func (b *stubCartBackend) RemoveItem(_ context.Context, _ auth.Credential, productID string) (domain.CartSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return domain.CartSnapshot{}, b.err
	}
	b.removeCalls++
	delete(b.lines, productID)
	return b.snapshot(), nil
}

func (b *stubCartBackend) ClearCart(_ context.Context, _ auth.Credential) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.lines = make(map[string]domain.CartLine)
	return nil
}

// stubPaymentClient synthesizes a confirmed order from the stored draft.
type stubPaymentClient struct {
	mu          sync.Mutex
	gatewayURL  string
	initiateErr error
	verifyErr   error
	verifyCalls int
}

func (c *stubPaymentClient) InitiatePayment(_ context.Context, _ auth.Credential, _ domain.OrderDraft) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initiateErr != nil {
		return "", c.initiateErr
	}
	if c.gatewayURL == "" {
		return "https://gateway.example/pay/default", nil
	}
	return c.gatewayURL, nil
}

func (c *stubPaymentClient) VerifyPaymentAndCreateOrder(_ context.Context, _ auth.Credential, referenceID string, draft domain.OrderDraft) (domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifyCalls++
	if c.verifyErr != nil {
		return domain.Order{}, c.verifyErr
	}
	return domain.Order{
		OrderID:       draft.OrderID,
		Items:         draft.Items,
		Address:       draft.Address,
		ShippingPrice: draft.ShippingPrice,
		Total:         draft.Total(),
		Status:        domain.OrderStatusConfirmed,
		PaymentID:     referenceID,
	}, nil
}

func (c *stubPaymentClient) verifyCallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifyCalls
}

// memStore is a map-backed draft slot.
type memStore struct {
	mu     sync.Mutex
	drafts map[string]domain.OrderDraft
}

func newMemStore() *memStore {
	return &memStore{drafts: make(map[string]domain.OrderDraft)}
}

func (s *memStore) Put(_ context.Context, sessionKey string, draft domain.OrderDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[sessionKey] = draft
	return nil
}

func (s *memStore) Get(_ context.Context, sessionKey string) (domain.OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionKey]
	if !ok {
		return domain.OrderDraft{}, draftstore.ErrDraftNotFound
	}
	return draft, nil
}

func (s *memStore) Clear(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionKey)
	return nil
}

func (s *memStore) stored(sessionKey string) (domain.OrderDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionKey]
	return draft, ok
}

// stubOrdersClient serves a fixed history with injectable failures.
type stubOrdersClient struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
	calls  int
}

func (c *stubOrdersClient) Orders(_ context.Context, _ auth.Credential, _ int) ([]domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.orders, nil
}

func (c *stubOrdersClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func recordResponse(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, r)
	return w
}
