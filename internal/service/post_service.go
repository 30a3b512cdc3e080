package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/guidance"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/maheshrc27/postpilot/pkg/timeutil"
)

type PostService interface {
	Create(ctx context.Context, req *transfer.CreatePostRequest) (*models.Post, time.Duration, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*models.Post, error)
	Update(ctx context.Context, id int64, req *transfer.UpdatePostRequest) (*models.Post, time.Duration, error)
	Schedule(ctx context.Context, id int64, scheduledTime string) (*models.Post, time.Duration, error)
	Cancel(ctx context.Context, id int64, canceled bool) error
	PublishNow(ctx context.Context, id int64) (*transfer.PublishResponse, error)
	Remove(ctx context.Context, id int64) error
	SeedExamples(ctx context.Context) error
	ToResponse(post *models.Post) *transfer.PostResponse
}

type postService struct {
	cfg       *config.Config
	loc       *time.Location
	pr        repository.PostRepository
	publisher PublisherService
	guide     *guidance.Guidance
}

func NewPostService(
	cfg *config.Config,
	loc *time.Location,
	pr repository.PostRepository,
	publisher PublisherService,
	guide *guidance.Guidance) PostService {
	return &postService{
		cfg:       cfg,
		loc:       loc,
		pr:        pr,
		publisher: publisher,
		guide:     guide,
	}
}

func (s *postService) Create(ctx context.Context, req *transfer.CreatePostRequest) (*models.Post, time.Duration, error) {
	if req == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, -1, NewValidationError("", err.Error())
	}
	// Drafts may start empty and pick up generated content later.
	if req.Content == "" && !req.IsDraft {
		err := NewValidationError("content", "cannot be empty")
		slog.Info(err.Error())
		return nil, -1, err
	}

	// Parse and normalize scheduled time. Drafts may omit it; scheduled
	// posts must carry a future time.
	var scheduledTime *time.Time
	if req.ScheduledTime != nil && *req.ScheduledTime != "" {
		parsed, err := timeutil.Parse(*req.ScheduledTime, s.loc)
		if err != nil {
			slog.Info(err.Error())
			return nil, -1, NewValidationError("scheduled_time", err.Error())
		}
		normalized := timeutil.Normalize(parsed, s.loc)
		scheduledTime = &normalized
	}
	if !req.IsDraft {
		if scheduledTime == nil {
			err := NewValidationError("scheduled_time", "is required for scheduled posts")
			slog.Info(err.Error())
			return nil, -1, err
		}
		if !scheduledTime.After(time.Now()) {
			err := NewValidationError("scheduled_time", "must be in the future")
			slog.Info(err.Error())
			return nil, -1, err
		}
	}

	post := models.Post{
		Content:            req.Content,
		ImageURL:           req.ImageURL,
		ScheduledTime:      scheduledTime,
		IsDraft:            req.IsDraft,
		PublishToTwitter:   boolOrDefault(req.PublishToTwitter, true),
		PublishToInstagram: boolOrDefault(req.PublishToInstagram, false),
		PublishToFacebook:  boolOrDefault(req.PublishToFacebook, false),
		PublishToPinterest: boolOrDefault(req.PublishToPinterest, false),
	}

	id, err := s.pr.Create(ctx, &post)
	if err != nil {
		return nil, -1, fmt.Errorf("error creating post: %w", err)
	}

	created, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, -1, err
	}
	if created == nil {
		return nil, -1, errors.New("created post not found")
	}

	return created, s.enqueueDelay(created), nil
}

func (s *postService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, filter repository.ListFilter) ([]*models.Post, error) {
	return s.pr.List(ctx, filter)
}

func (s *postService) Update(ctx context.Context, id int64, req *transfer.UpdatePostRequest) (*models.Post, time.Duration, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, -1, err
	}

	if post.IsPublished {
		err := NewConflictError("published posts cannot be edited")
		slog.Info(err.Error())
		return nil, -1, err
	}

	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.ImageURL != nil {
		post.ImageURL = req.ImageURL
	}
	if req.ScheduledTime != nil {
		if *req.ScheduledTime == "" {
			post.ScheduledTime = nil
		} else {
			parsed, err := timeutil.Parse(*req.ScheduledTime, s.loc)
			if err != nil {
				slog.Info(err.Error())
				return nil, -1, NewValidationError("scheduled_time", err.Error())
			}
			normalized := timeutil.Normalize(parsed, s.loc)
			post.ScheduledTime = &normalized
		}
	}
	if req.IsDraft != nil {
		post.IsDraft = *req.IsDraft
	}
	if req.PublishToTwitter != nil {
		post.PublishToTwitter = *req.PublishToTwitter
	}
	if req.PublishToInstagram != nil {
		post.PublishToInstagram = *req.PublishToInstagram
	}
	if req.PublishToFacebook != nil {
		post.PublishToFacebook = *req.PublishToFacebook
	}
	if req.PublishToPinterest != nil {
		post.PublishToPinterest = *req.PublishToPinterest
	}

	if post.Content == "" && !post.IsDraft {
		err := NewValidationError("content", "cannot be empty")
		slog.Info(err.Error())
		return nil, -1, err
	}

	if err := s.pr.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, -1, NewConflictError("post was modified concurrently, retry")
		}
		return nil, -1, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, -1, err
	}

	return updated, s.enqueueDelay(updated), nil
}

// Schedule sets a post's publish time. Scheduling a draft promotes it to the
// scheduled state; the time must be in the future.
func (s *postService) Schedule(ctx context.Context, id int64, scheduledTime string) (*models.Post, time.Duration, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, -1, err
	}

	if post.IsPublished {
		err := NewConflictError("post is already published")
		slog.Info(err.Error())
		return nil, -1, err
	}
	if scheduledTime == "" {
		err := NewValidationError("scheduled_time", "cannot be empty")
		slog.Info(err.Error())
		return nil, -1, err
	}

	parsed, err := timeutil.Parse(scheduledTime, s.loc)
	if err != nil {
		slog.Info(err.Error())
		return nil, -1, NewValidationError("scheduled_time", err.Error())
	}
	normalized := timeutil.Normalize(parsed, s.loc)
	if !normalized.After(time.Now()) {
		err := NewValidationError("scheduled_time", "must be in the future")
		slog.Info(err.Error())
		return nil, -1, err
	}

	post.ScheduledTime = &normalized
	post.IsDraft = false

	if err := s.pr.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, -1, NewConflictError("post was modified concurrently, retry")
		}
		return nil, -1, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, -1, err
	}

	return updated, s.enqueueDelay(updated), nil
}

// Cancel toggles the canceled flag either way. Re-applying the current state
// is a harmless no-op; content, schedule and publish flags stay untouched.
func (s *postService) Cancel(ctx context.Context, id int64, canceled bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.pr.SetCanceled(ctx, id, canceled)
}

// PublishNow pushes a post out immediately. Drafts are promoted and sent
// regardless of their scheduled time; a scheduled post still in the future
// is rejected.
func (s *postService) PublishNow(ctx context.Context, id int64) (*transfer.PublishResponse, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.IsPublished {
		err := NewValidationError("", "post is already published")
		slog.Info(err.Error())
		return nil, err
	}
	if post.IsCanceled {
		err := NewValidationError("", "post is canceled")
		slog.Info(err.Error())
		return nil, err
	}

	if post.IsDraft {
		if err := s.pr.SetDraft(ctx, id, false); err != nil {
			return nil, err
		}
		post.IsDraft = false
	} else if post.ScheduledTime != nil && post.ScheduledTime.After(time.Now()) {
		err := NewValidationError("scheduled_time", "post is scheduled for the future")
		slog.Info(err.Error())
		return nil, err
	}

	results, published, err := s.publisher.Publish(ctx, post)
	if err != nil {
		return nil, err
	}

	return &transfer.PublishResponse{
		PostID:    post.ID,
		Results:   *results,
		Published: published,
	}, nil
}

func (s *postService) Remove(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.pr.Remove(ctx, id)
}

// SeedExamples fills an empty table with the guidance example posts so a
// fresh install has something to show.
func (s *postService) SeedExamples(ctx context.Context) error {
	count, err := s.pr.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().In(s.loc)
	for _, example := range s.guide.ExamplePosts {
		post := models.Post{
			Content:          example.Content,
			IsDraft:          example.Draft,
			PublishToTwitter: true,
		}
		if example.ImageURL != "" {
			imageURL := example.ImageURL
			post.ImageURL = &imageURL
		}
		if !example.Draft {
			scheduled := now.Add(time.Duration(example.HoursFromNow) * time.Hour)
			post.ScheduledTime = &scheduled
		}

		if _, err := s.pr.Create(ctx, &post); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d example posts", len(s.guide.ExamplePosts))
	return nil
}

// ToResponse converts stored timestamps into the scheduling zone for
// display. Posts without a scheduled time show a placeholder a day out.
func (s *postService) ToResponse(post *models.Post) *transfer.PostResponse {
	resp := &transfer.PostResponse{
		ID:                 post.ID,
		Content:            post.Content,
		ImageURL:           post.ImageURL,
		IsPublished:        post.IsPublished,
		IsDraft:            post.IsDraft,
		IsCanceled:         post.IsCanceled,
		PublishToTwitter:   post.PublishToTwitter,
		PublishToInstagram: post.PublishToInstagram,
		PublishToFacebook:  post.PublishToFacebook,
		PublishToPinterest: post.PublishToPinterest,
		TwitterPostID:      post.TwitterPostID,
		InstagramPostID:    post.InstagramPostID,
		FacebookPostID:     post.FacebookPostID,
		PinterestPostID:    post.PinterestPostID,
		EngagementScore:    post.EngagementScore,
		CreatedAt:          timeutil.Display(post.CreatedAt, s.loc),
		UpdatedAt:          timeutil.Display(post.UpdatedAt, s.loc),
	}

	if post.ScheduledTime != nil {
		resp.ScheduledTime = timeutil.Display(*post.ScheduledTime, s.loc)
	} else {
		resp.ScheduledTime = timeutil.FallbackDisplay(time.Now(), s.loc)
	}

	return resp
}

// enqueueDelay reports how long until the post should be handed to the
// worker, or -1 when it should not be queued at all.
func (s *postService) enqueueDelay(post *models.Post) time.Duration {
	if post.IsDraft || post.IsPublished || post.IsCanceled || post.ScheduledTime == nil {
		return -1
	}
	delay := time.Until(*post.ScheduledTime)
	if delay < 0 {
		delay = 0
	}
	return delay
}

func boolOrDefault(value *bool, def bool) bool {
	if value == nil {
		return def
	}
	return *value
}
