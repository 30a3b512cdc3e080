package service

import (
	"context"
	"log"
	"sync"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

type PublisherService interface {
	Fanout(ctx context.Context, post *models.Post) *models.PlatformResults
	Publish(ctx context.Context, post *models.Post) (*models.PlatformResults, bool, error)
	PublishDue(ctx context.Context, postID int64) error
}

type publisherService struct {
	cfg     *config.Config
	pr      repository.PostRepository
	clients []PlatformClient
}

func NewPublisherService(cfg *config.Config, pr repository.PostRepository, clients []PlatformClient) PublisherService {
	return &publisherService{
		cfg:     cfg,
		pr:      pr,
		clients: clients,
	}
}

// Fanout sends the post to every targeted platform at once. Each platform
// call gets its own timeout and its own result slot; a failing platform only
// leaves its own slot empty.
func (s *publisherService) Fanout(ctx context.Context, post *models.Post) *models.PlatformResults {
	targets := post.Targets()
	ids := make([]*string, len(s.clients))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 4) // Concurrency limit

	publishTo := func(i int, client PlatformClient) {
		defer wg.Done()
		defer func() { <-semaphore }()

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
		defer cancel()

		id, err := client.Publish(callCtx, post.Content, post.ImageURL)
		if err != nil {
			log.Printf("Error posting to %s for PostID %d: %v", client.Name(), post.ID, err)
			return
		}
		ids[i] = &id
	}

	for i, client := range s.clients {
		if !targets[client.Name()] {
			continue
		}
		wg.Add(1)
		semaphore <- struct{}{}
		go publishTo(i, client)
	}

	wg.Wait()

	results := &models.PlatformResults{}
	for i, client := range s.clients {
		if ids[i] != nil {
			results.Set(client.Name(), ids[i])
		}
	}
	return results
}

// Publish fans the post out and records the outcome. Under the default
// policy the post is marked published even when every platform failed; the
// any_success policy leaves it due so a later sweep retries it.
func (s *publisherService) Publish(ctx context.Context, post *models.Post) (*models.PlatformResults, bool, error) {
	results := s.Fanout(ctx, post)

	if s.cfg.PublishPolicy == config.PublishPolicyAnySuccess && !results.AnySuccess() {
		log.Printf("No platform accepted PostID %d, leaving unpublished", post.ID)
		return results, false, nil
	}

	won, err := s.pr.MarkPublished(ctx, post.ID, results)
	if err != nil {
		return results, false, err
	}
	if !won {
		log.Printf("PostID %d was already published by another worker", post.ID)
	}
	return results, won, nil
}

// PublishDue re-reads the post and publishes only if it is still due. Stale
// queue tasks for posts that were canceled, rescheduled, turned back into
// drafts or already published fall through as no-ops.
func (s *publisherService) PublishDue(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		log.Printf("PostID %d no longer exists, skipping publish", postID)
		return nil
	}
	if !post.Due(time.Now()) {
		log.Printf("PostID %d is not due, skipping publish", postID)
		return nil
	}

	_, _, err = s.Publish(ctx, post)
	return err
}
