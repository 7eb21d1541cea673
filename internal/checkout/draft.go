package checkout

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/domain"
	"github.com/thesahilsinghh/shoppers/internal/draftstore"
)

const (
	// Orders above this subtotal ship for free, everything else pays the
	// flat fee.
	FreeShippingThreshold = 100.0
	FlatShippingFee       = 15.0
)

// DraftBuilder turns a cart snapshot plus a shipping address into a pending
// OrderDraft and persists it under the user's single draft slot.
type DraftBuilder struct {
	store draftstore.Store
	now   func() time.Time
}

func NewDraftBuilder(store draftstore.Store) *DraftBuilder {
	return &DraftBuilder{store: store, now: time.Now}
}

// Build validates its inputs, prices shipping, and persists the draft,
// overwriting any previous unconfirmed one. Nothing is persisted on a
// validation failure.
func (b *DraftBuilder) Build(ctx context.Context, cred auth.Credential, snapshot domain.CartSnapshot, address domain.Address) (domain.OrderDraft, error) {
	if snapshot.IsEmpty() {
		return domain.OrderDraft{}, ErrEmptyCart
	}
	if missing := address.MissingFields(); len(missing) > 0 {
		return domain.OrderDraft{}, &ValidationError{Fields: missing}
	}

	items := make([]domain.OrderItem, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, domain.OrderItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		})
	}

	draft := domain.OrderDraft{
		OrderID:       b.referenceID(),
		Items:         items,
		Address:       address,
		ShippingPrice: ShippingPrice(snapshot.TotalPrice),
	}

	if err := b.store.Put(ctx, cred.SessionKey(), draft); err != nil {
		return domain.OrderDraft{}, fmt.Errorf("persist draft: %w", err)
	}

	log.WithFields(log.Fields{
		"order_id": draft.OrderID,
		"items":    len(draft.Items),
		"total":    draft.Total(),
	}).Info("order draft created")
	return draft, nil
}

func ShippingPrice(subtotal float64) float64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// referenceID only needs to be practically unique per user session, the
// backend keys confirmed orders by its own id.
func (b *DraftBuilder) referenceID() string {
	return fmt.Sprintf("ORD-%d", b.now().UnixMilli())
}
