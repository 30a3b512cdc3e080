package job

import (
	"context"
	"log"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

type PublishDueJob struct {
	pr        repository.PostRepository
	publisher service.PublisherService
}

func NewPublishDueJob(
	pr repository.PostRepository,
	publisher service.PublisherService) *PublishDueJob {
	return &PublishDueJob{
		pr:        pr,
		publisher: publisher,
	}
}

// PublishDue sweeps for posts whose scheduled time has arrived and publishes
// each one. A failing post does not stop the rest, and posts published
// meanwhile lose the publish-marking race and stay published once, so
// overlapping sweeps and queue tasks are safe.
func (c *PublishDueJob) PublishDue() {
	ctx := context.Background()

	posts, err := c.pr.ListDue(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if len(posts) == 0 {
		return
	}

	// run id ties a tick's log lines together when sweeps overlap
	runID, err := gonanoid.New(8)
	if err != nil {
		runID = "sweep"
	}

	log.Printf("[sweep %s] publishing %d due posts", runID, len(posts))
	for _, post := range posts {
		if _, _, err := c.publisher.Publish(ctx, post); err != nil {
			log.Printf("[sweep %s] Error publishing PostID %d: %v", runID, post.ID, err)
		}
	}
}
