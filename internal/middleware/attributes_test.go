package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestScheme(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		assert.Equal(t, "http", requestScheme(r))
	})

	t.Run("tls", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.TLS = &tls.ConnectionState{}
		assert.Equal(t, "https", requestScheme(r))
	})

	t.Run("forwarded proto wins over tls", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.Header.Set("X-Forwarded-Proto", "https, http")
		assert.Equal(t, "https", requestScheme(r))
	})
}

func TestHostPort(t *testing.T) {
	tests := []struct {
		host   string
		want   int
		wantOK bool
	}{
		{"example.com:8080", 8080, true},
		{"example.com", 0, false},
		{"example.com:", 0, false},
		{"example.com:abc", 0, false},
		{"localhost:443", 443, true},
	}
	for _, tt := range tests {
		port, ok := hostPort(tt.host)
		assert.Equal(t, tt.wantOK, ok, tt.host)
		assert.Equal(t, tt.want, port, tt.host)
	}
}

func TestRealClientIP(t *testing.T) {
	t.Run("forwarded for, first entry", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1, 10.0.0.2")
		assert.Equal(t, "203.0.113.5", realClientIP(r))
	})

	t.Run("real ip fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.Header.Set("X-Real-Ip", "198.51.100.7")
		assert.Equal(t, "198.51.100.7", realClientIP(r))
	})

	t.Run("remote addr fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		assert.Equal(t, r.RemoteAddr, realClientIP(r))
	})
}

func TestRequestAttributesFlavorAndTarget(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/search?q=go&page=2", nil)
	attrs := requestAttributes(r, "/search", "")

	got := map[string]string{}
	for _, kv := range attrs {
		got[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, "POST", got["http.method"])
	assert.Equal(t, "1.1", got["http.flavor"])
	assert.Equal(t, "/search", got["http.route"])
	assert.Equal(t, "/search?q=go&page=2", got["http.target"])
	assert.NotContains(t, got, "http.user_agent")
	assert.NotContains(t, got, "http.server_name")
	assert.NotContains(t, got, "net.host.port")
}
