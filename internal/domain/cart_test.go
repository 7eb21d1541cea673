package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCartSnapshot_ComputesTotals(t *testing.T) {
	snap := NewCartSnapshot([]CartLine{
		{Product: Product{ID: "a", Title: "Widget", Price: 10}, Quantity: 2},
		{Product: Product{ID: "b", Title: "Gadget", Price: 25}, Quantity: 1},
	})

	assert.Equal(t, 3, snap.TotalItems)
	assert.Equal(t, 45.0, snap.TotalPrice)
	assert.Len(t, snap.Lines, 2)
}

func TestNewCartSnapshot_MergesDuplicateProducts(t *testing.T) {
	snap := NewCartSnapshot([]CartLine{
		{Product: Product{ID: "a", Price: 10}, Quantity: 1},
		{Product: Product{ID: "a", Price: 10}, Quantity: 2},
	})

	assert.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
	assert.Equal(t, 3, snap.TotalItems)
	assert.Equal(t, 30.0, snap.TotalPrice)
}

func TestNewCartSnapshot_DropsNonPositiveQuantities(t *testing.T) {
	snap := NewCartSnapshot([]CartLine{
		{Product: Product{ID: "a", Price: 10}, Quantity: 0},
		{Product: Product{ID: "b", Price: 5}, Quantity: -2},
		{Product: Product{ID: "c", Price: 7}, Quantity: 1},
	})

	assert.Len(t, snap.Lines, 1)
	assert.Equal(t, "c", snap.Lines[0].Product.ID)
}

func TestCartSnapshot_IsEmpty(t *testing.T) {
	assert.True(t, NewCartSnapshot(nil).IsEmpty())
	assert.False(t, NewCartSnapshot([]CartLine{{Product: Product{ID: "a"}, Quantity: 1}}).IsEmpty())
}

func TestAddress_MissingFields(t *testing.T) {
	missing := Address{Name: "n", City: "c"}.MissingFields()
	assert.ElementsMatch(t, []string{"contact", "flat", "state", "country", "pincode"}, missing)

	complete := Address{
		Name: "n", Contact: "c", Flat: "f", City: "ci",
		State: "s", Country: "co", Pincode: "p",
	}
	assert.Empty(t, complete.MissingFields())
}

func TestAddress_LandmarkIsOptional(t *testing.T) {
	addr := Address{
		Name: "n", Contact: "c", Flat: "f", City: "ci",
		State: "s", Country: "co", Pincode: "p",
	}
	assert.Empty(t, addr.MissingFields())
	assert.Empty(t, addr.Landmark)
}

func TestOrderDraft_Totals(t *testing.T) {
	draft := OrderDraft{
		Items: []OrderItem{
			{ProductID: "a", Quantity: 2, Price: 10},
			{ProductID: "b", Quantity: 1, Price: 25},
		},
		ShippingPrice: 15,
	}

	assert.Equal(t, 45.0, draft.Subtotal())
	assert.Equal(t, 60.0, draft.Total())
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusConfirmed.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
}
