package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")
	// ErrInitiationFailed leaves the draft in storage so the user may retry.
	ErrInitiationFailed = errors.New("payment initiation failed")
	// ErrMissingReference: the gateway callback carried no reference id.
	// Fatal for the attempt, storage is not even read.
	ErrMissingReference = errors.New("missing payment reference")
	// ErrGatewayDeclined: the gateway reported a non-success status. The
	// backend verify mutation is never called on this path.
	ErrGatewayDeclined = errors.New("payment declined by gateway")
	// ErrDraftNotFound: no pending draft in storage, possibly already
	// processed. Guards against replaying a cleared checkout.
	ErrDraftNotFound = errors.New("pending draft not found, possibly already processed")

	IllegalTransitionError = errors.New("illegal checkout state transition")
)

// ValidationError names the address fields still missing before an order can
// be submitted. It is surfaced inline to the form, never fatal to the session.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("address incomplete, missing: %s", strings.Join(e.Fields, ", "))
}
