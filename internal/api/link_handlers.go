package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukepan/linkpulse/internal/contextkey"
	"github.com/dukepan/linkpulse/internal/models"
	"github.com/dukepan/linkpulse/internal/utils"
)

const (
	slugLength   = 8
	linkCacheTTL = time.Hour
)

// reservedSlugs are path segments already claimed by service endpoints.
var reservedSlugs = map[string]struct{}{
	"healthz": {},
	"metrics": {},
	"auth":    {},
	"api":     {},
	"ws":      {},
}

// CreateLinkRequest represents the link creation payload
type CreateLinkRequest struct {
	Slug      string     `json:"slug,omitempty"`
	TargetURL string     `json:"target_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateLinkHandler creates a shortened link for the authenticated user
func (r *Router) CreateLinkHandler(w http.ResponseWriter, req *http.Request) {
	userID, ok := req.Context().Value(contextkey.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var createReq CreateLinkRequest
	if err := json.NewDecoder(req.Body).Decode(&createReq); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := url.Parse(createReq.TargetURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		utils.RespondError(w, http.StatusBadRequest, "target_url must be an absolute http or https URL")
		return
	}

	slug := createReq.Slug
	if slug == "" {
		slug = newSlug()
	}
	if !validSlug(slug) {
		utils.RespondError(w, http.StatusBadRequest, "slug must be 1-64 characters of [a-zA-Z0-9_-]")
		return
	}
	if _, reserved := reservedSlugs[slug]; reserved {
		utils.RespondError(w, http.StatusConflict, "slug is reserved")
		return
	}

	link, err := r.db.CreateLink(req.Context(), slug, target.String(), userID, createReq.ExpiresAt)
	if err != nil {
		r.logger.Error(req.Context(), "failed to create link %q: %v", slug, err)
		utils.RespondError(w, http.StatusConflict, "slug already in use")
		return
	}

	if ttl := cacheTTLFor(link.ExpiresAt); ttl > 0 {
		if err := r.cache.CacheLink(req.Context(), link.Slug, link.TargetURL, ttl); err != nil {
			r.logger.Error(req.Context(), "failed to cache link %q: %v", link.Slug, err)
		}
	}

	// Probe the target in the background. WithoutCancel keeps the trace
	// parent so the probe's client span lands in this request's trace.
	probeCtx := context.WithoutCancel(req.Context())
	go func() {
		reachable := r.checker.Check(probeCtx, link.TargetURL)
		if err := r.db.SetLinkReachable(probeCtx, link.ID, reachable); err != nil {
			r.logger.Error(probeCtx, "failed to record reachability for %q: %v", link.Slug, err)
		}
	}()

	utils.RespondJSON(w, http.StatusCreated, link)
}

// ListLinksHandler lists the authenticated user's links
func (r *Router) ListLinksHandler(w http.ResponseWriter, req *http.Request) {
	userID, ok := req.Context().Value(contextkey.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	links, err := r.db.GetLinksByOwner(req.Context(), userID)
	if err != nil {
		r.logger.Error(req.Context(), "failed to list links: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list links")
		return
	}
	if links == nil {
		links = []*models.Link{}
	}

	utils.RespondJSON(w, http.StatusOK, links)
}

// DeleteLinkHandler removes one of the authenticated user's links
func (r *Router) DeleteLinkHandler(w http.ResponseWriter, req *http.Request) {
	userID, ok := req.Context().Value(contextkey.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	linkID, err := uuid.Parse(req.PathValue("id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid link ID")
		return
	}

	slug, err := r.db.DeleteLink(req.Context(), linkID, userID)
	if err == pgx.ErrNoRows {
		utils.RespondError(w, http.StatusNotFound, "link not found")
		return
	}
	if err != nil {
		r.logger.Error(req.Context(), "failed to delete link %s: %v", linkID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete link")
		return
	}

	if err := r.cache.InvalidateLink(req.Context(), slug); err != nil {
		r.logger.Error(req.Context(), "failed to invalidate cached link %q: %v", slug, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// RedirectHandler resolves a slug and redirects, recording the click
func (r *Router) RedirectHandler(w http.ResponseWriter, req *http.Request) {
	slug := req.PathValue("slug")

	target, err := r.cache.GetLink(req.Context(), slug)
	if err != nil {
		r.logger.Error(req.Context(), "cache lookup failed for %q: %v", slug, err)
	}

	if target == "" {
		link, err := r.db.GetLinkBySlug(req.Context(), slug)
		if err != nil {
			utils.RespondError(w, http.StatusNotFound, "link not found")
			return
		}
		if link.ExpiresAt != nil && link.ExpiresAt.Before(time.Now()) {
			utils.RespondError(w, http.StatusNotFound, "link expired")
			return
		}
		target = link.TargetURL
		if ttl := cacheTTLFor(link.ExpiresAt); ttl > 0 {
			if err := r.cache.CacheLink(req.Context(), slug, target, ttl); err != nil {
				r.logger.Error(req.Context(), "failed to cache link %q: %v", slug, err)
			}
		}
	}

	r.recordClick(req, slug)
	http.Redirect(w, req, target, http.StatusFound)
}

// recordClick bumps the pending counter, publishes the live event, and
// queues the raw event for the analytics batch. All best effort.
func (r *Router) recordClick(req *http.Request, slug string) {
	ctx := req.Context()
	ev := &models.ClickEvent{
		Slug:       slug,
		Referrer:   req.Referer(),
		UserAgent:  req.UserAgent(),
		OccurredAt: time.Now().UTC(),
	}

	if err := r.cache.IncrClick(ctx, slug); err != nil {
		r.logger.Error(ctx, "failed to count click for %q: %v", slug, err)
	}
	if err := r.cache.PublishClick(ctx, ev); err != nil {
		r.logger.Error(ctx, "failed to publish click for %q: %v", slug, err)
	}
	r.aggregator.QueueEvent(ev)
}

// cacheTTLFor caps a cache entry's lifetime at the link's expiry so an
// expired slug never keeps redirecting from the cache. Returns 0 for an
// already-expired link, meaning do not cache at all.
func cacheTTLFor(expiresAt *time.Time) time.Duration {
	if expiresAt == nil {
		return linkCacheTTL
	}
	until := time.Until(*expiresAt)
	if until <= 0 {
		return 0
	}
	return min(until, linkCacheTTL)
}

func newSlug() string {
	id := uuid.New().String()
	return strings.ReplaceAll(id, "-", "")[:slugLength]
}

func validSlug(slug string) bool {
	if len(slug) == 0 || len(slug) > 64 {
		return false
	}
	for _, c := range slug {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
