package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// ErrVersionConflict is returned by Update when the row changed since the
// caller read it.
var ErrVersionConflict = errors.New("post was modified concurrently")

// ListFilter narrows List. Nil flag pointers mean "either". Results come
// back in schedule order unless RecentFirst asks for newest edits first.
type ListFilter struct {
	Drafts      *bool
	Published   *bool
	Canceled    *bool
	RecentFirst bool
	Limit       int
	Offset      int
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Post, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SetDraft(ctx context.Context, id int64, draft bool) error
	SetCanceled(ctx context.Context, id int64, canceled bool) error
	MarkPublished(ctx context.Context, id int64, results *models.PlatformResults) (bool, error)
	UpdateEngagement(ctx context.Context, id int64, score int) error
	AttachImage(ctx context.Context, id int64, imageURL string, score int) error
	IsImageURLUsed(ctx context.Context, imageURL string) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, content, image_url, scheduled_time, is_published, is_draft, is_canceled,
		publish_to_twitter, publish_to_instagram, publish_to_facebook, publish_to_pinterest,
		twitter_post_id, instagram_post_id, facebook_post_id, pinterest_post_id,
		engagement_score, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID, &post.Content, &post.ImageURL, &post.ScheduledTime,
		&post.IsPublished, &post.IsDraft, &post.IsCanceled,
		&post.PublishToTwitter, &post.PublishToInstagram, &post.PublishToFacebook, &post.PublishToPinterest,
		&post.TwitterPostID, &post.InstagramPostID, &post.FacebookPostID, &post.PinterestPostID,
		&post.EngagementScore, &post.Version, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (content, image_url, scheduled_time, is_published, is_draft, is_canceled,
			publish_to_twitter, publish_to_instagram, publish_to_facebook, publish_to_pinterest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.Content, post.ImageURL, post.ScheduledTime,
		post.IsPublished, post.IsDraft, post.IsCanceled,
		post.PublishToTwitter, post.PublishToInstagram, post.PublishToFacebook, post.PublishToPinterest,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) List(ctx context.Context, filter ListFilter) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`

	var conditions []string
	var args []any
	if filter.Drafts != nil {
		args = append(args, *filter.Drafts)
		conditions = append(conditions, fmt.Sprintf("is_draft = $%d", len(args)))
	}
	if filter.Published != nil {
		args = append(args, *filter.Published)
		conditions = append(conditions, fmt.Sprintf("is_published = $%d", len(args)))
	}
	if filter.Canceled != nil {
		args = append(args, *filter.Canceled)
		conditions = append(conditions, fmt.Sprintf("is_canceled = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if filter.RecentFirst {
		query += " ORDER BY updated_at DESC, id DESC"
	} else {
		query += " ORDER BY scheduled_time ASC NULLS LAST, id ASC"
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ListRecent returns the newest posts first, for prompt history context.
func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE is_draft = FALSE
			AND is_published = FALSE
			AND is_canceled = FALSE
			AND scheduled_time IS NOT NULL
			AND scheduled_time <= $1
		ORDER BY scheduled_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET content = $1,
			image_url = $2,
			scheduled_time = $3,
			is_draft = $4,
			is_canceled = $5,
			publish_to_twitter = $6,
			publish_to_instagram = $7,
			publish_to_facebook = $8,
			publish_to_pinterest = $9,
			version = version + 1,
			updated_at = $10
		WHERE id = $11 AND version = $12
	`
	res, err := r.db.ExecContext(ctx, query,
		post.Content, post.ImageURL, post.ScheduledTime,
		post.IsDraft, post.IsCanceled,
		post.PublishToTwitter, post.PublishToInstagram, post.PublishToFacebook, post.PublishToPinterest,
		time.Now(), post.ID, post.Version,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *postRepository) SetDraft(ctx context.Context, id int64, draft bool) error {
	query := `UPDATE posts SET is_draft = $1, version = version + 1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, draft, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetCanceled(ctx context.Context, id int64, canceled bool) error {
	query := `UPDATE posts SET is_canceled = $1, version = version + 1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, canceled, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// MarkPublished records the fan-out results and flips is_published. The
// is_published guard makes concurrent publishers of the same post resolve to
// a single winner; it reports false when this caller lost.
func (r *postRepository) MarkPublished(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
	query := `
		UPDATE posts
		SET is_published = TRUE,
			is_draft = FALSE,
			twitter_post_id = $1,
			instagram_post_id = $2,
			facebook_post_id = $3,
			pinterest_post_id = $4,
			version = version + 1,
			updated_at = $5
		WHERE id = $6 AND is_published = FALSE
	`
	res, err := r.db.ExecContext(ctx, query,
		results.Twitter, results.Instagram, results.Facebook, results.Pinterest,
		time.Now(), id,
	)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n == 1, nil
}

func (r *postRepository) UpdateEngagement(ctx context.Context, id int64, score int) error {
	query := `UPDATE posts SET engagement_score = $1, version = version + 1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, score, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// AttachImage stores a selected image and its match score on the post.
func (r *postRepository) AttachImage(ctx context.Context, id int64, imageURL string, score int) error {
	query := `UPDATE posts SET image_url = $1, engagement_score = $2, version = version + 1, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, imageURL, score, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) IsImageURLUsed(ctx context.Context, imageURL string) (bool, error) {
	query := `SELECT 1 FROM posts WHERE image_url = $1 LIMIT 1`

	var result int
	err := r.db.QueryRowContext(ctx, query, imageURL).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
