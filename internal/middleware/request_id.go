package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dukepan/linkpulse/internal/contextkey"
)

// RequestID assigns every request a UUID, stores it in the context for the
// logger, and echoes it back in the X-Request-ID response header. An ID
// already supplied by a gateway is reused instead of minted.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestID, err := uuid.Parse(req.Header.Get("X-Request-ID"))
		if err != nil {
			requestID = uuid.New()
		}
		ctx := context.WithValue(req.Context(), contextkey.ContextKeyRequestID, requestID)
		w.Header().Set("X-Request-ID", requestID.String())
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
