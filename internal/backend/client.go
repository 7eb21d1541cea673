package backend

import (
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrBackendRejected marks a request the backend understood but refused
// (GraphQL error payload, 4xx on the cart API other than auth failures).
var ErrBackendRejected = errors.New("backend rejected request")

// NewHTTPClient builds the shared client used against both backends, with
// tracing on the transport. Timeouts beyond this are per-request contexts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
