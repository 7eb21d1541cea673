package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrUnauthenticated = errors.New("missing session credential")

// Credential is the opaque session token issued by the auth backend. The
// storefront never validates it locally, it only forwards it to the backends
// that do.
type Credential struct {
	Token string
}

func (c Credential) IsZero() bool {
	return c.Token == ""
}

// SessionKey derives a stable local key from the token, used to address
// per-user state (cart session, draft slot, order history) without keeping
// the raw token around as a map key.
func (c Credential) SessionKey() string {
	sum := sha256.Sum256([]byte(c.Token))
	return hex.EncodeToString(sum[:6])
}

type ctxKey struct{}

func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, ctxKey{}, cred)
}

func FromContext(ctx context.Context) (Credential, bool) {
	cred, ok := ctx.Value(ctxKey{}).(Credential)
	if !ok || cred.IsZero() {
		return Credential{}, false
	}
	return cred, true
}
