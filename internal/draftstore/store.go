package draftstore

import (
	"context"
	"errors"

	"github.com/thesahilsinghh/shoppers/internal/domain"
)

// Store holds the single pending OrderDraft per user. A new checkout
// overwrites any prior unconfirmed draft; the slot is cleared once the order
// is confirmed.
type Store interface {
	Put(ctx context.Context, sessionKey string, draft domain.OrderDraft) error
	Get(ctx context.Context, sessionKey string) (domain.OrderDraft, error)
	Clear(ctx context.Context, sessionKey string) error
}

var ErrDraftNotFound = errors.New("pending draft not found")
