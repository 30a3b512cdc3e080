package repository

import (
	"context"
	"database/sql"
)

const postsSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	content TEXT NOT NULL,
	image_url TEXT,
	scheduled_time TIMESTAMPTZ,
	is_published BOOLEAN NOT NULL DEFAULT FALSE,
	is_draft BOOLEAN NOT NULL DEFAULT FALSE,
	is_canceled BOOLEAN NOT NULL DEFAULT FALSE,
	publish_to_twitter BOOLEAN NOT NULL DEFAULT TRUE,
	publish_to_instagram BOOLEAN NOT NULL DEFAULT FALSE,
	publish_to_facebook BOOLEAN NOT NULL DEFAULT FALSE,
	publish_to_pinterest BOOLEAN NOT NULL DEFAULT FALSE,
	twitter_post_id TEXT,
	instagram_post_id TEXT,
	facebook_post_id TEXT,
	pinterest_post_id TEXT,
	engagement_score INTEGER NOT NULL DEFAULT 0,
	version BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_posts_due ON posts (scheduled_time)
	WHERE is_draft = FALSE AND is_published = FALSE AND is_canceled = FALSE;
`

// EnsureSchema creates the posts table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, postsSchema)
	return err
}
