package contextkey

// Key is the private type used for all context values set by this service.
type Key int

const (
	// ContextKeyRequestID carries the per-request UUID set by the request ID middleware.
	ContextKeyRequestID Key = iota
	// ContextKeyUserID carries the authenticated user's UUID set by the auth middleware.
	ContextKeyUserID
)
