package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
)

// CartClient talks to the remote cart store, the source of truth for cart
// contents. Every call returns the server's snapshot; callers replace their
// local state with it rather than applying optimistic guesses.
type CartClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[domain.CartSnapshot]
}

func NewCartClient(baseURL string, httpClient *http.Client) *CartClient {
	return &CartClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker[domain.CartSnapshot](gobreaker.Settings{
			Name: "cart-backend",
		}),
	}
}

type cartItemWire struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type cartResponseWire struct {
	Items      []cartItemWire `json:"items"`
	TotalPrice float64        `json:"totalPrice"`
}

type cartMutationWire struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (c *CartClient) FetchCart(ctx context.Context, cred auth.Credential) (domain.CartSnapshot, error) {
	return c.doSnapshot(ctx, cred, http.MethodGet, "/cart", nil)
}

func (c *CartClient) AddItem(ctx context.Context, cred auth.Credential, productID string, quantity int) (domain.CartSnapshot, error) {
	return c.doSnapshot(ctx, cred, http.MethodPost, "/cart", &cartMutationWire{ProductID: productID, Quantity: quantity})
}

func (c *CartClient) SetQuantity(ctx context.Context, cred auth.Credential, productID string, quantity int) (domain.CartSnapshot, error) {
	return c.doSnapshot(ctx, cred, http.MethodPut, "/cart", &cartMutationWire{ProductID: productID, Quantity: quantity})
}

func (c *CartClient) RemoveItem(ctx context.Context, cred auth.Credential, productID string) (domain.CartSnapshot, error) {
	return c.doSnapshot(ctx, cred, http.MethodDelete, "/cart/"+productID, nil)
}

func (c *CartClient) ClearCart(ctx context.Context, cred auth.Credential) error {
	req, err := c.newRequest(ctx, cred, http.MethodDelete, "/cart", nil)
	if err != nil {
		return err
	}

	_, err = c.breaker.Execute(func() (domain.CartSnapshot, error) {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return domain.CartSnapshot{}, errors.Wrap(doErr, "clear cart")
		}
		defer resp.Body.Close()
		if failErr := checkStatus(resp); failErr != nil {
			return domain.CartSnapshot{}, failErr
		}
		return domain.CartSnapshot{}, nil
	})
	return err
}

func (c *CartClient) doSnapshot(ctx context.Context, cred auth.Credential, method, path string, body *cartMutationWire) (domain.CartSnapshot, error) {
	req, err := c.newRequest(ctx, cred, method, path, body)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	return c.breaker.Execute(func() (domain.CartSnapshot, error) {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return domain.CartSnapshot{}, errors.Wrapf(doErr, "%s %s", method, path)
		}
		defer resp.Body.Close()

		if failErr := checkStatus(resp); failErr != nil {
			return domain.CartSnapshot{}, failErr
		}

		var wire cartResponseWire
		if decErr := json.NewDecoder(resp.Body).Decode(&wire); decErr != nil {
			return domain.CartSnapshot{}, errors.Wrap(decErr, "decode cart response")
		}

		lines := make([]domain.CartLine, 0, len(wire.Items))
		for _, item := range wire.Items {
			lines = append(lines, domain.CartLine{Product: item.Product, Quantity: item.Quantity})
		}
		return domain.NewCartSnapshot(lines), nil
	})
}

func (c *CartClient) newRequest(ctx context.Context, cred auth.Credential, method, path string, body *cartMutationWire) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode cart request")
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build cart request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	return req, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: cart backend returned %d", auth.ErrUnauthenticated, resp.StatusCode)
	default:
		return fmt.Errorf("%w: cart backend returned %d", ErrBackendRejected, resp.StatusCode)
	}
}
