package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckReachableTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewChecker(time.Second)
	assert.True(t, c.Check(context.Background(), srv.URL))
}

func TestCheckServerErrorMeansUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewChecker(time.Second)
	assert.False(t, c.Check(context.Background(), srv.URL))
}

func TestCheckClientErrorStillReachable(t *testing.T) {
	// A 404 means the server is alive even if the path is wrong.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewChecker(time.Second)
	assert.True(t, c.Check(context.Background(), srv.URL))
}

func TestCheckRetriesHeadRejectionWithGet(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewChecker(time.Second)
	assert.True(t, c.Check(context.Background(), srv.URL))
	assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
}

func TestCheckConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewChecker(time.Second)
	assert.False(t, c.Check(context.Background(), srv.URL))
}

func TestCheckTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewChecker(10 * time.Millisecond)
	assert.False(t, c.Check(context.Background(), srv.URL))
}
