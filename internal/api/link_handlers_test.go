package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidSlug(t *testing.T) {
	assert.True(t, validSlug("go"))
	assert.True(t, validSlug("my-link_2"))
	assert.True(t, validSlug("AbC123"))

	assert.False(t, validSlug(""))
	assert.False(t, validSlug("has space"))
	assert.False(t, validSlug("sl/ash"))
	assert.False(t, validSlug("émoji"))
	assert.False(t, validSlug(string(make([]byte, 65))))
}

func TestNewSlug(t *testing.T) {
	a := newSlug()
	b := newSlug()

	assert.Len(t, a, slugLength)
	assert.True(t, validSlug(a))
	assert.NotEqual(t, a, b)
}

func TestCacheTTLForCapsAtExpiry(t *testing.T) {
	t.Run("no expiry gets the full TTL", func(t *testing.T) {
		assert.Equal(t, linkCacheTTL, cacheTTLFor(nil))
	})

	t.Run("distant expiry gets the full TTL", func(t *testing.T) {
		exp := time.Now().Add(48 * time.Hour)
		assert.Equal(t, linkCacheTTL, cacheTTLFor(&exp))
	})

	t.Run("near expiry caps the TTL", func(t *testing.T) {
		exp := time.Now().Add(time.Minute)
		ttl := cacheTTLFor(&exp)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("expired link is never cached", func(t *testing.T) {
		exp := time.Now().Add(-time.Second)
		assert.Equal(t, time.Duration(0), cacheTTLFor(&exp))
	})
}

func TestReservedSlugsCoverServiceEndpoints(t *testing.T) {
	for _, slug := range []string{"healthz", "metrics", "auth", "api", "ws"} {
		_, ok := reservedSlugs[slug]
		assert.True(t, ok, slug)
	}
}
