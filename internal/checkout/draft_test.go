package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
)

func completeAddress() domain.Address {
	return domain.Address{
		Name:    "name",
		Contact: "+912282882",
		Flat:    "flat",
		City:    "new delhi",
		State:   "state",
		Country: "India",
		Pincode: "11122",
	}
}

func twoLineSnapshot() domain.CartSnapshot {
	return domain.NewCartSnapshot([]domain.CartLine{
		{Product: domain.Product{ID: "prod-a", Price: 10}, Quantity: 2},
		{Product: domain.Product{ID: "prod-b", Price: 25}, Quantity: 1},
	})
}

func draftCred() auth.Credential {
	return auth.Credential{Token: "token-1"}
}

func TestBuild_EmptyCart_PersistsNothing(t *testing.T) {
	store := newMockStore()
	builder := NewDraftBuilder(store)

	_, err := builder.Build(context.Background(), draftCred(), domain.CartSnapshot{}, completeAddress())

	assert.ErrorIs(t, err, ErrEmptyCart)
	_, stored := store.stored(draftCred().SessionKey())
	assert.False(t, stored)
}

func TestBuild_IncompleteAddress_NamesMissingFields(t *testing.T) {
	store := newMockStore()
	builder := NewDraftBuilder(store)

	addr := completeAddress()
	addr.City = ""
	addr.Pincode = ""

	_, err := builder.Build(context.Background(), draftCred(), twoLineSnapshot(), addr)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.ElementsMatch(t, []string{"city", "pincode"}, validation.Fields)

	_, stored := store.stored(draftCred().SessionKey())
	assert.False(t, stored)
}

func TestBuild_AppliesFlatFeeBelowThreshold(t *testing.T) {
	store := newMockStore()
	builder := NewDraftBuilder(store)

	// Subtotal $45: two of prod-a at $10, one of prod-b at $25.
	draft, err := builder.Build(context.Background(), draftCred(), twoLineSnapshot(), completeAddress())
	require.NoError(t, err)

	assert.Equal(t, 45.0, draft.Subtotal())
	assert.Equal(t, FlatShippingFee, draft.ShippingPrice)
	assert.Equal(t, 60.0, draft.Total())
}

func TestBuild_FreeShippingAboveThreshold(t *testing.T) {
	store := newMockStore()
	builder := NewDraftBuilder(store)

	snap := domain.NewCartSnapshot([]domain.CartLine{
		{Product: domain.Product{ID: "prod-a", Price: 60}, Quantity: 2},
	})

	draft, err := builder.Build(context.Background(), draftCred(), snap, completeAddress())
	require.NoError(t, err)

	assert.Equal(t, 0.0, draft.ShippingPrice)
	assert.Equal(t, 120.0, draft.Total())
}

func TestBuild_ExactThresholdStillPaysShipping(t *testing.T) {
	store := newMockStore()
	builder := NewDraftBuilder(store)

	snap := domain.NewCartSnapshot([]domain.CartLine{
		{Product: domain.Product{ID: "prod-a", Price: 100}, Quantity: 1},
	})

	draft, err := builder.Build(context.Background(), draftCred(), snap, completeAddress())
	require.NoError(t, err)

	assert.Equal(t, FlatShippingFee, draft.ShippingPrice)
}

func TestBuild_PersistsDraftAndOverwritesPrevious(t *testing.T) {
	store := newMockStore()
	builder := NewDraftBuilder(store)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	builder.now = func() time.Time { return ts }

	first, err := builder.Build(context.Background(), draftCred(), twoLineSnapshot(), completeAddress())
	require.NoError(t, err)

	ts = ts.Add(time.Second)
	second, err := builder.Build(context.Background(), draftCred(), twoLineSnapshot(), completeAddress())
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderID, second.OrderID)

	stored, ok := store.stored(draftCred().SessionKey())
	require.True(t, ok)
	assert.Equal(t, second.OrderID, stored.OrderID)
}

func TestBuild_CapturesPriceAtTimeOfAdd(t *testing.T) {
	store := newMockStore()
	builder := NewDraftBuilder(store)

	draft, err := builder.Build(context.Background(), draftCred(), twoLineSnapshot(), completeAddress())
	require.NoError(t, err)

	require.Len(t, draft.Items, 2)
	assert.Equal(t, domain.OrderItem{ProductID: "prod-a", Quantity: 2, Price: 10}, draft.Items[0])
	assert.Equal(t, domain.OrderItem{ProductID: "prod-b", Quantity: 1, Price: 25}, draft.Items[1])
}
