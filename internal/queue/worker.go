package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// HandlePublishPostTask publishes the identified post if it is still due.
// The publisher re-reads the post first, so tasks made stale by an edit,
// cancel, or earlier publish fall through as no-ops.
func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := j.publisher.PublishDue(ctx, payload.PostID); err != nil {
		log.Printf("Error publishing PostID %d: %v", payload.PostID, err)
		return err
	}
	return nil
}
