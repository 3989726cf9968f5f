package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// headerCarrier adapts http.Header to the propagation carrier contract so
// the configured propagator can read trace and baggage headers off a
// request. A missing header is simply absent; lookups never fail.
type headerCarrier http.Header

var _ propagation.TextMapCarrier = headerCarrier{}

// Get returns the first value for the canonicalized header key, or "".
func (c headerCarrier) Get(key string) string {
	return http.Header(c).Get(key)
}

// Set writes a header value. Only the inject path (outbound transport) uses
// this; extraction is read-only.
func (c headerCarrier) Set(key, value string) {
	http.Header(c).Set(key, value)
}

// Keys lists every header name present on the request. Propagators that
// enumerate headers, such as baggage formats, depend on this.
func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
