package cart

import "errors"

var (
	// ErrFetchFailed is recoverable: the prior snapshot stays usable.
	ErrFetchFailed = errors.New("cart fetch failed")
	// ErrMutationFailed means the backend call errored and no local change
	// was applied.
	ErrMutationFailed = errors.New("cart mutation failed")
	// ErrMutationInFlight rejects a re-entrant mutation while another one is
	// still outstanding.
	ErrMutationInFlight = errors.New("cart mutation already in flight")
)
