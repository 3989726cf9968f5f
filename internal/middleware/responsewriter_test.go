package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rw := newStatusRecorder(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rw.status)
}

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newStatusRecorder(rec)

	rw.WriteHeader(http.StatusTeapot)
	n, err := rw.Write([]byte("short and stout"))

	assert.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, http.StatusTeapot, rw.status)
	assert.Equal(t, int64(15), rw.bytes)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestStatusRecorderUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newStatusRecorder(rec)
	assert.Same(t, rec, rw.Unwrap())
}
