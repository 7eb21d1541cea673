package backend

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
)

// GraphQLClient covers the order/payment/auth surface of the backend.
type GraphQLClient struct {
	gql     *graphql.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewGraphQLClient(endpoint string, httpClient *http.Client) *GraphQLClient {
	return &GraphQLClient{
		gql: graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name: "orders-backend",
		}),
	}
}

const ordersQuery = `
query GetOrders($limit: Int) {
  orders(limit: $limit) {
    _id
    order_id
    status
    total
    shippingPrice
    payment_id
    createdAt
    order_items {
      product_id { _id }
      quantity
      price
    }
    address { name contact flat city state country pincode }
  }
}`

const initiatePaymentMutation = `
mutation InitiatePayment($input: CreateOrderInput!) {
  initiatePayment(createOrderInput: $input)
}`

const verifyPaymentMutation = `
mutation VerifyPaymentAndCreateOrder($collect_request_id: String!, $input: CreateOrderInput!) {
  verifyPaymentAndCreateOrder(collect_request_id: $collect_request_id, createOrderInput: $input) {
    _id
    order_id
    status
    total
    shippingPrice
    payment_id
    createdAt
    order_items {
      product_id { _id }
      quantity
      price
    }
    address { name contact flat city state country pincode }
  }
}`

const loginMutation = `
mutation Login($loginInput: LoginInput!) {
  login(loginInput: $loginInput) {
    message
    token
    user { _id email first_name last_name }
  }
}`

type orderWire struct {
	ID            string  `json:"_id"`
	OrderID       string  `json:"order_id"`
	Status        string  `json:"status"`
	Total         float64 `json:"total"`
	ShippingPrice float64 `json:"shippingPrice"`
	PaymentID     string  `json:"payment_id"`
	CreatedAt     string  `json:"createdAt"`
	OrderItems    []struct {
		ProductID struct {
			ID string `json:"_id"`
		} `json:"product_id"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	} `json:"order_items"`
	Address domain.Address `json:"address"`
}

func (w orderWire) toDomain() domain.Order {
	order := domain.Order{
		ID:            w.ID,
		OrderID:       w.OrderID,
		Status:        domain.OrderStatus(w.Status),
		Total:         w.Total,
		ShippingPrice: w.ShippingPrice,
		PaymentID:     w.PaymentID,
		Address:       w.Address,
		CreatedAt:     parseBackendTime(w.CreatedAt),
	}
	for _, item := range w.OrderItems {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID.ID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return order
}

type draftInputWire struct {
	OrderID       string             `json:"order_id"`
	OrderItems    []domain.OrderItem `json:"order_items"`
	Address       domain.Address     `json:"address"`
	ShippingPrice float64            `json:"shippingPrice"`
}

func draftInput(draft domain.OrderDraft) draftInputWire {
	return draftInputWire{
		OrderID:       draft.OrderID,
		OrderItems:    draft.Items,
		Address:       draft.Address,
		ShippingPrice: draft.ShippingPrice,
	}
}

// Orders returns the user's order history, most recent first (server
// ordering).
func (c *GraphQLClient) Orders(ctx context.Context, cred auth.Credential, limit int) ([]domain.Order, error) {
	req := graphql.NewRequest(ordersQuery)
	req.Var("limit", limit)

	var resp struct {
		Orders []orderWire `json:"orders"`
	}
	if err := c.run(ctx, cred, req, &resp); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	orders := make([]domain.Order, 0, len(resp.Orders))
	for _, w := range resp.Orders {
		orders = append(orders, w.toDomain())
	}
	return orders, nil
}

// InitiatePayment returns the gateway redirect URL tied to the draft's order
// reference id.
func (c *GraphQLClient) InitiatePayment(ctx context.Context, cred auth.Credential, draft domain.OrderDraft) (string, error) {
	req := graphql.NewRequest(initiatePaymentMutation)
	req.Var("input", draftInput(draft))

	var resp struct {
		InitiatePayment string `json:"initiatePayment"`
	}
	if err := c.run(ctx, cred, req, &resp); err != nil {
		return "", errors.Wrap(err, "initiate payment")
	}
	if resp.InitiatePayment == "" {
		return "", errors.Wrap(ErrBackendRejected, "initiate payment returned no gateway url")
	}
	return resp.InitiatePayment, nil
}

// VerifyPaymentAndCreateOrder is the combined verify-and-create operation.
// Exactly one of the returned order or error is meaningful.
func (c *GraphQLClient) VerifyPaymentAndCreateOrder(ctx context.Context, cred auth.Credential, referenceID string, draft domain.OrderDraft) (domain.Order, error) {
	req := graphql.NewRequest(verifyPaymentMutation)
	req.Var("collect_request_id", referenceID)
	req.Var("input", draftInput(draft))

	var resp struct {
		VerifyPaymentAndCreateOrder *orderWire `json:"verifyPaymentAndCreateOrder"`
	}
	if err := c.run(ctx, cred, req, &resp); err != nil {
		return domain.Order{}, errors.Wrap(err, "verify payment")
	}
	if resp.VerifyPaymentAndCreateOrder == nil {
		return domain.Order{}, errors.Wrap(ErrBackendRejected, "verify payment returned no order")
	}
	return resp.VerifyPaymentAndCreateOrder.toDomain(), nil
}

type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID        string `json:"_id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user"`
}

func (c *GraphQLClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	req := graphql.NewRequest(loginMutation)
	req.Var("loginInput", map[string]string{"email": email, "password": password})

	var resp struct {
		Login LoginResult `json:"login"`
	}
	if err := c.run(ctx, auth.Credential{}, req, &resp); err != nil {
		return LoginResult{}, errors.Wrap(err, "login")
	}
	if resp.Login.Token == "" {
		return LoginResult{}, errors.Wrap(ErrBackendRejected, "login returned no token")
	}
	return resp.Login, nil
}

func (c *GraphQLClient) run(ctx context.Context, cred auth.Credential, req *graphql.Request, out any) error {
	if !cred.IsZero() {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.gql.Run(ctx, req, out)
	})
	return err
}

func parseBackendTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	// Mongo-style epoch milliseconds show up on some deployments.
	if millis, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(millis)
	}
	return time.Time{}
}
