package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

type fakeClient struct {
	name  string
	id    string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeClient) Name() string {
	return f.name
}

func (f *fakeClient) Publish(ctx context.Context, content string, imageURL *string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

// fakeRepo implements just the methods a test assigns; anything else panics
// through the embedded nil interface.
type fakeRepo struct {
	repository.PostRepository
	getByID       func(ctx context.Context, id int64) (*models.Post, error)
	markPublished func(ctx context.Context, id int64, results *models.PlatformResults) (bool, error)
	markCalls     atomic.Int32
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.getByID(ctx, id)
}

func (f *fakeRepo) MarkPublished(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
	f.markCalls.Add(1)
	return f.markPublished(ctx, id, results)
}

// memRepo is an in-memory PostRepository with the same semantics the real
// one gets from SQL: version checks on update and a single-winner publish
// guard.
type memRepo struct {
	mu    sync.Mutex
	seq   int64
	posts map[int64]*models.Post
}

func newMemRepo() *memRepo {
	return &memRepo{posts: make(map[int64]*models.Post)}
}

func (m *memRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p := *post
	p.ID = m.seq
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.posts[p.ID] = &p
	return p.ID, nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, filter repository.ListFilter) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for _, p := range m.posts {
		if filter.Drafts != nil && p.IsDraft != *filter.Drafts {
			continue
		}
		if filter.Published != nil && p.IsPublished != *filter.Published {
			continue
		}
		if filter.Canceled != nil && p.IsCanceled != *filter.Canceled {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for id := m.seq; id > 0 && len(out) < limit; id-- {
		if p, ok := m.posts[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for _, p := range m.posts {
		if p.Due(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.posts[post.ID]
	if !ok || cur.Version != post.Version {
		return repository.ErrVersionConflict
	}
	cp := *post
	cp.Version = cur.Version + 1
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = time.Now()
	m.posts[post.ID] = &cp
	return nil
}

func (m *memRepo) SetDraft(ctx context.Context, id int64, draft bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		p.IsDraft = draft
		p.Version++
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memRepo) SetCanceled(ctx context.Context, id int64, canceled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		p.IsCanceled = canceled
		p.Version++
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memRepo) MarkPublished(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.IsPublished {
		return false, nil
	}
	p.IsPublished = true
	p.IsDraft = false
	p.TwitterPostID = results.Twitter
	p.InstagramPostID = results.Instagram
	p.FacebookPostID = results.Facebook
	p.PinterestPostID = results.Pinterest
	p.Version++
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *memRepo) UpdateEngagement(ctx context.Context, id int64, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		p.EngagementScore = score
		p.Version++
	}
	return nil
}

func (m *memRepo) AttachImage(ctx context.Context, id int64, imageURL string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		url := imageURL
		p.ImageURL = &url
		p.EngagementScore = score
		p.Version++
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memRepo) IsImageURLUsed(ctx context.Context, imageURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ImageURL != nil && *p.ImageURL == imageURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CountAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.posts)), nil
}

func (m *memRepo) Remove(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

type stubPublisher struct {
	publish func(ctx context.Context, post *models.Post) (*models.PlatformResults, bool, error)
}

func (s *stubPublisher) Fanout(ctx context.Context, post *models.Post) *models.PlatformResults {
	return &models.PlatformResults{}
}

func (s *stubPublisher) Publish(ctx context.Context, post *models.Post) (*models.PlatformResults, bool, error) {
	if s.publish != nil {
		return s.publish(ctx, post)
	}
	return &models.PlatformResults{}, true, nil
}

func (s *stubPublisher) PublishDue(ctx context.Context, postID int64) error {
	return nil
}
