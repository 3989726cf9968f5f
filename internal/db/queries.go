package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukepan/linkpulse/internal/models"
)

// User queries

func (db *Database) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.QueryRow(ctx,
		`SELECT id, username, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Username, &user.CreatedAt)
	return &user, err
}

func (db *Database) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	return &user, err
}

func (db *Database) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	_, err := db.Exec(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Username, user.PasswordHash,
	)
	return user, err
}

// Link queries

func (db *Database) GetLinkBySlug(ctx context.Context, slug string) (*models.Link, error) {
	var link models.Link
	err := db.QueryRow(ctx,
		`SELECT id, slug, target_url, owner_id, clicks, reachable, expires_at, created_at
		 FROM links WHERE slug = $1`,
		slug,
	).Scan(&link.ID, &link.Slug, &link.TargetURL, &link.OwnerID, &link.Clicks, &link.Reachable, &link.ExpiresAt, &link.CreatedAt)
	return &link, err
}

func (db *Database) GetLinksByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Link, error) {
	rows, err := db.Query(ctx,
		`SELECT id, slug, target_url, owner_id, clicks, reachable, expires_at, created_at
		 FROM links WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(&link.ID, &link.Slug, &link.TargetURL, &link.OwnerID, &link.Clicks, &link.Reachable, &link.ExpiresAt, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

func (db *Database) CreateLink(ctx context.Context, slug, targetURL string, ownerID uuid.UUID, expiresAt *time.Time) (*models.Link, error) {
	link := &models.Link{
		ID:        uuid.New(),
		Slug:      slug,
		TargetURL: targetURL,
		OwnerID:   ownerID,
		ExpiresAt: expiresAt,
	}
	err := db.QueryRow(ctx,
		`INSERT INTO links (id, slug, target_url, owner_id, expires_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		link.ID, link.Slug, link.TargetURL, link.OwnerID, link.ExpiresAt,
	).Scan(&link.CreatedAt)
	return link, err
}

func (db *Database) SetLinkReachable(ctx context.Context, linkID uuid.UUID, reachable bool) error {
	_, err := db.Exec(ctx,
		`UPDATE links SET reachable = $1 WHERE id = $2`,
		reachable, linkID,
	)
	return err
}

// DeleteLink removes a link owned by ownerID and returns its slug so the
// cache entry can be invalidated. pgx.ErrNoRows means no such link.
func (db *Database) DeleteLink(ctx context.Context, linkID, ownerID uuid.UUID) (string, error) {
	var slug string
	err := db.QueryRow(ctx,
		`DELETE FROM links WHERE id = $1 AND owner_id = $2 RETURNING slug`,
		linkID, ownerID,
	).Scan(&slug)
	return slug, err
}

// Click analytics queries

func (db *Database) AddClicks(ctx context.Context, slug string, count int64) error {
	_, err := db.Exec(ctx,
		`UPDATE links SET clicks = clicks + $1 WHERE slug = $2`,
		count, slug,
	)
	return err
}

func (db *Database) InsertClickEvents(ctx context.Context, events []*models.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(
			`INSERT INTO click_events (slug, referrer, user_agent, occurred_at) VALUES ($1, $2, $3, $4)`,
			ev.Slug, ev.Referrer, ev.UserAgent, ev.OccurredAt,
		)
	}
	return db.SendBatch(ctx, batch)
}

func (db *Database) PruneClickEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := db.Exec(ctx,
		`DELETE FROM click_events WHERE occurred_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
