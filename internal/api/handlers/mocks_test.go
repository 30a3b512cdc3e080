package handlers

import (
	"context"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type stubPostService struct {
	posts map[int64]*models.Post
	delay time.Duration

	createdReq  *transfer.CreatePostRequest
	updatedReq  *transfer.UpdatePostRequest
	lastFilter  repository.ListFilter
	scheduledAt string
	canceled    map[int64]bool
	removed     []int64

	createErr  error
	updateErr  error
	publishErr error

	listResult  []*models.Post
	publishResp *transfer.PublishResponse
}

func newStubPostService() *stubPostService {
	return &stubPostService{
		posts:    make(map[int64]*models.Post),
		delay:    -1,
		canceled: make(map[int64]bool),
	}
}

func (s *stubPostService) Create(ctx context.Context, req *transfer.CreatePostRequest) (*models.Post, time.Duration, error) {
	if s.createErr != nil {
		return nil, -1, s.createErr
	}
	s.createdReq = req
	post := &models.Post{ID: 1, Content: req.Content, IsDraft: req.IsDraft}
	s.posts[post.ID] = post
	return post, s.delay, nil
}

func (s *stubPostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return post, nil
}

func (s *stubPostService) List(ctx context.Context, filter repository.ListFilter) ([]*models.Post, error) {
	s.lastFilter = filter
	return s.listResult, nil
}

func (s *stubPostService) Update(ctx context.Context, id int64, req *transfer.UpdatePostRequest) (*models.Post, time.Duration, error) {
	if s.updateErr != nil {
		return nil, -1, s.updateErr
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, -1, service.ErrNotFound
	}
	s.updatedReq = req
	if req.Content != nil {
		post.Content = *req.Content
	}
	return post, s.delay, nil
}

func (s *stubPostService) Schedule(ctx context.Context, id int64, scheduledTime string) (*models.Post, time.Duration, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, -1, service.ErrNotFound
	}
	s.scheduledAt = scheduledTime
	post.IsDraft = false
	return post, s.delay, nil
}

func (s *stubPostService) Cancel(ctx context.Context, id int64, canceled bool) error {
	if _, ok := s.posts[id]; !ok {
		return service.ErrNotFound
	}
	s.canceled[id] = canceled
	return nil
}

func (s *stubPostService) PublishNow(ctx context.Context, id int64) (*transfer.PublishResponse, error) {
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	if _, ok := s.posts[id]; !ok {
		return nil, service.ErrNotFound
	}
	return s.publishResp, nil
}

func (s *stubPostService) Remove(ctx context.Context, id int64) error {
	if _, ok := s.posts[id]; !ok {
		return service.ErrNotFound
	}
	s.removed = append(s.removed, id)
	return nil
}

func (s *stubPostService) SeedExamples(ctx context.Context) error {
	return nil
}

func (s *stubPostService) ToResponse(post *models.Post) *transfer.PostResponse {
	resp := &transfer.PostResponse{
		ID:          post.ID,
		Content:     post.Content,
		ImageURL:    post.ImageURL,
		IsPublished: post.IsPublished,
		IsDraft:     post.IsDraft,
		IsCanceled:  post.IsCanceled,
	}
	if post.ScheduledTime != nil {
		resp.ScheduledTime = *post.ScheduledTime
	}
	return resp
}

type stubGenerator struct {
	resp   *transfer.GenerateTextResponse
	err    error
	stages []string
	calls  int
}

func (g *stubGenerator) GenerateText(ctx context.Context, progress func(string)) (*transfer.GenerateTextResponse, error) {
	g.calls++
	if progress != nil {
		for _, stage := range g.stages {
			progress(stage)
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.resp, nil
}

type stubImageGen struct {
	resp    *transfer.GenerateImageResponse
	err     error
	stages  []string
	lastReq *transfer.GenerateImageRequest
}

func (g *stubImageGen) GenerateImage(ctx context.Context, req *transfer.GenerateImageRequest, progress func(string)) (*transfer.GenerateImageResponse, error) {
	g.lastReq = req
	if progress != nil {
		for _, stage := range g.stages {
			progress(stage)
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.resp, nil
}
