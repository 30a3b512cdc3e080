package transfer

import (
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type CreatePostRequest struct {
	Content            string  `json:"content"`
	ImageURL           *string `json:"image_url"`
	ScheduledTime      *string `json:"scheduled_time"`
	IsDraft            bool    `json:"is_draft"`
	PublishToTwitter   *bool   `json:"publish_to_twitter"`
	PublishToInstagram *bool   `json:"publish_to_instagram"`
	PublishToFacebook  *bool   `json:"publish_to_facebook"`
	PublishToPinterest *bool   `json:"publish_to_pinterest"`
}

// UpdatePostRequest carries a partial update. Nil fields stay untouched.
type UpdatePostRequest struct {
	Content            *string `json:"content"`
	ImageURL           *string `json:"image_url"`
	ScheduledTime      *string `json:"scheduled_time"`
	IsDraft            *bool   `json:"is_draft"`
	PublishToTwitter   *bool   `json:"publish_to_twitter"`
	PublishToInstagram *bool   `json:"publish_to_instagram"`
	PublishToFacebook  *bool   `json:"publish_to_facebook"`
	PublishToPinterest *bool   `json:"publish_to_pinterest"`
}

type SchedulePostRequest struct {
	ScheduledTime string `json:"scheduled_time"`
}

type PostResponse struct {
	ID                 int64     `json:"id"`
	Content            string    `json:"content"`
	ImageURL           *string   `json:"image_url"`
	ScheduledTime      time.Time `json:"scheduled_time"`
	IsPublished        bool      `json:"is_published"`
	IsDraft            bool      `json:"is_draft"`
	IsCanceled         bool      `json:"is_canceled"`
	PublishToTwitter   bool      `json:"publish_to_twitter"`
	PublishToInstagram bool      `json:"publish_to_instagram"`
	PublishToFacebook  bool      `json:"publish_to_facebook"`
	PublishToPinterest bool      `json:"publish_to_pinterest"`
	TwitterPostID      *string   `json:"twitter_post_id"`
	InstagramPostID    *string   `json:"instagram_post_id"`
	FacebookPostID     *string   `json:"facebook_post_id"`
	PinterestPostID    *string   `json:"pinterest_post_id"`
	EngagementScore    int       `json:"engagement_score"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type PublishResponse struct {
	PostID    int64                  `json:"post_id"`
	Results   models.PlatformResults `json:"results"`
	Published bool                   `json:"published"`
}
