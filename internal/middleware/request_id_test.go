package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukepan/linkpulse/internal/contextkey"
)

func TestRequestIDMintsAndEchoes(t *testing.T) {
	var fromContext uuid.UUID
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext, _ = r.Context().Value(contextkey.ContextKeyRequestID).(uuid.UUID)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.NotEqual(t, uuid.Nil, fromContext)
	assert.Equal(t, fromContext.String(), rec.Header().Get("X-Request-ID"))
}

func TestRequestIDReusesGatewayID(t *testing.T) {
	supplied := uuid.New()

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", supplied.String())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, supplied.String(), rec.Header().Get("X-Request-ID"))
}

func TestRequestIDRejectsMalformedID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, got)
	assert.NotEqual(t, "not-a-uuid", got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}
