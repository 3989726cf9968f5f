package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered link owner
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Don't expose password hash
	CreatedAt    time.Time `json:"created_at"`
}

// Link represents a shortened link
type Link struct {
	ID        uuid.UUID  `json:"id"`
	Slug      string     `json:"slug"`
	TargetURL string     `json:"target_url"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Clicks    int64      `json:"clicks"`
	Reachable *bool      `json:"reachable,omitempty"` // Result of the last link check, nil when unchecked
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ClickEvent represents a single resolved redirect
type ClickEvent struct {
	Slug       string    `json:"slug"`
	Referrer   string    `json:"referrer,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WSEvent is the envelope pushed to websocket dashboard subscribers
type WSEvent struct {
	Type string      `json:"type"` // click, stats
	Data interface{} `json:"data"`
}
