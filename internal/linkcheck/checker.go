package linkcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/dukepan/linkpulse/internal/middleware"
)

// Checker probes newly created target URLs for reachability. Requests go
// through the instrumented transport so every probe shows up as a client
// span parented to the request that created the link.
type Checker struct {
	client  *http.Client
	timeout time.Duration
}

// NewChecker creates a Checker with the given per-probe timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		client: &http.Client{
			Transport: middleware.NewTransport(nil),
			// Redirect chains are fine; the final destination decides.
		},
		timeout: timeout,
	}
}

// Check reports whether the target URL answers with a non-5xx status. A
// transport failure or timeout means unreachable, never an error for the
// caller: reachability is advisory.
func (c *Checker) Check(ctx context.Context, targetURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "linkpulse-linkcheck/1.0")

	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	// Some servers reject HEAD outright; retry those with GET before
	// declaring the target broken.
	if res.StatusCode == http.StatusMethodNotAllowed {
		return c.checkGet(ctx, targetURL)
	}
	return res.StatusCode < 500
}

func (c *Checker) checkGet(ctx context.Context, targetURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "linkpulse-linkcheck/1.0")

	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode < 500
}
