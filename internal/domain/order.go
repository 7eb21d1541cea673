package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderDraft is a client-held, unconfirmed order awaiting payment. The price
// on each item is the unit price at the time the draft was built.
type OrderDraft struct {
	OrderID       string      `json:"order_id"`
	Items         []OrderItem `json:"order_items"`
	Address       Address     `json:"address"`
	ShippingPrice float64     `json:"shippingPrice"`
}

func (d OrderDraft) Subtotal() float64 {
	var sum float64
	for _, item := range d.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

func (d OrderDraft) Total() float64 {
	return d.Subtotal() + d.ShippingPrice
}

// Order is the server-confirmed record, created only after payment
// verification succeeds. The client only reads it afterwards.
type Order struct {
	ID            string      `json:"_id"`
	OrderID       string      `json:"order_id"`
	UserID        string      `json:"user_id"`
	Items         []OrderItem `json:"order_items"`
	Address       Address     `json:"address"`
	Total         float64     `json:"total"`
	ShippingPrice float64     `json:"shippingPrice"`
	Status        OrderStatus `json:"status"`
	PaymentID     string      `json:"payment_id,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}
