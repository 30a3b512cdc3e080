package models

import "time"

const (
	PlatformTwitter   = "twitter"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformPinterest = "pinterest"
)

// Platforms lists every supported destination in fan-out order.
var Platforms = []string{PlatformTwitter, PlatformInstagram, PlatformFacebook, PlatformPinterest}

type Post struct {
	ID                 int64      `db:"id" json:"id"`
	Content            string     `db:"content" json:"content"`
	ImageURL           *string    `db:"image_url" json:"image_url"`
	ScheduledTime      *time.Time `db:"scheduled_time" json:"scheduled_time"`
	IsPublished        bool       `db:"is_published" json:"is_published"`
	IsDraft            bool       `db:"is_draft" json:"is_draft"`
	IsCanceled         bool       `db:"is_canceled" json:"is_canceled"`
	PublishToTwitter   bool       `db:"publish_to_twitter" json:"publish_to_twitter"`
	PublishToInstagram bool       `db:"publish_to_instagram" json:"publish_to_instagram"`
	PublishToFacebook  bool       `db:"publish_to_facebook" json:"publish_to_facebook"`
	PublishToPinterest bool       `db:"publish_to_pinterest" json:"publish_to_pinterest"`
	TwitterPostID      *string    `db:"twitter_post_id" json:"twitter_post_id"`
	InstagramPostID    *string    `db:"instagram_post_id" json:"instagram_post_id"`
	FacebookPostID     *string    `db:"facebook_post_id" json:"facebook_post_id"`
	PinterestPostID    *string    `db:"pinterest_post_id" json:"pinterest_post_id"`
	EngagementScore    int        `db:"engagement_score" json:"engagement_score"`
	Version            int64      `db:"version" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Due reports whether the post should be picked up by the publisher: not a
// draft, not already published or canceled, and its scheduled time has
// arrived. Posts without a scheduled time never come due.
func (p *Post) Due(now time.Time) bool {
	if p.IsDraft || p.IsPublished || p.IsCanceled {
		return false
	}
	if p.ScheduledTime == nil {
		return false
	}
	return !p.ScheduledTime.After(now)
}

// Targets maps platform name to whether this post should go there.
func (p *Post) Targets() map[string]bool {
	return map[string]bool{
		PlatformTwitter:   p.PublishToTwitter,
		PlatformInstagram: p.PublishToInstagram,
		PlatformFacebook:  p.PublishToFacebook,
		PlatformPinterest: p.PublishToPinterest,
	}
}

// PlatformResults carries the external IDs returned by a fan-out, one slot
// per platform. A nil slot means the platform was skipped or failed.
type PlatformResults struct {
	Twitter   *string `json:"twitter"`
	Instagram *string `json:"instagram"`
	Facebook  *string `json:"facebook"`
	Pinterest *string `json:"pinterest"`
}

// Set stores the external id for the named platform.
func (r *PlatformResults) Set(platform string, id *string) {
	switch platform {
	case PlatformTwitter:
		r.Twitter = id
	case PlatformInstagram:
		r.Instagram = id
	case PlatformFacebook:
		r.Facebook = id
	case PlatformPinterest:
		r.Pinterest = id
	}
}

// Get returns the external id recorded for the named platform.
func (r *PlatformResults) Get(platform string) *string {
	switch platform {
	case PlatformTwitter:
		return r.Twitter
	case PlatformInstagram:
		return r.Instagram
	case PlatformFacebook:
		return r.Facebook
	case PlatformPinterest:
		return r.Pinterest
	}
	return nil
}

// AnySuccess reports whether at least one platform accepted the post.
func (r *PlatformResults) AnySuccess() bool {
	return r.Twitter != nil || r.Instagram != nil || r.Facebook != nil || r.Pinterest != nil
}
