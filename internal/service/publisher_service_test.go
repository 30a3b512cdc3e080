package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		PublishPolicy:  config.PublishPolicyAlways,
		PublishTimeout: time.Second,
	}
}

func fourClients() (tw, ig, fb, pin *fakeClient, all []PlatformClient) {
	tw = &fakeClient{name: models.PlatformTwitter, id: "tw-1"}
	ig = &fakeClient{name: models.PlatformInstagram, id: "ig-1"}
	fb = &fakeClient{name: models.PlatformFacebook, id: "fb-1"}
	pin = &fakeClient{name: models.PlatformPinterest, id: "pin-1"}
	all = []PlatformClient{tw, ig, fb, pin}
	return
}

func TestFanoutPublishesOnlyToTargetedPlatforms(t *testing.T) {
	tw, ig, fb, pin, clients := fourClients()
	s := NewPublisherService(testConfig(), nil, clients)

	post := &models.Post{ID: 1, Content: "hi", PublishToTwitter: true, PublishToFacebook: true}
	results := s.Fanout(context.Background(), post)

	require.NotNil(t, results.Twitter)
	require.Equal(t, "tw-1", *results.Twitter)
	require.NotNil(t, results.Facebook)
	require.Equal(t, "fb-1", *results.Facebook)
	require.Nil(t, results.Instagram)
	require.Nil(t, results.Pinterest)

	require.EqualValues(t, 1, tw.calls.Load())
	require.EqualValues(t, 1, fb.calls.Load())
	require.EqualValues(t, 0, ig.calls.Load())
	require.EqualValues(t, 0, pin.calls.Load())
}

func TestFanoutIsolatesPlatformFailures(t *testing.T) {
	tw, _, _, _, clients := fourClients()
	tw.err = errors.New("rate limited")
	s := NewPublisherService(testConfig(), nil, clients)

	post := &models.Post{
		ID: 2, Content: "hi",
		PublishToTwitter: true, PublishToInstagram: true, PublishToFacebook: true, PublishToPinterest: true,
	}
	results := s.Fanout(context.Background(), post)

	require.Nil(t, results.Twitter)
	require.NotNil(t, results.Instagram)
	require.NotNil(t, results.Facebook)
	require.NotNil(t, results.Pinterest)
	require.True(t, results.AnySuccess())
}

func TestFanoutCutsOffSlowPlatform(t *testing.T) {
	tw, _, _, _, clients := fourClients()
	tw.delay = 500 * time.Millisecond
	cfg := testConfig()
	cfg.PublishTimeout = 20 * time.Millisecond
	s := NewPublisherService(cfg, nil, clients)

	post := &models.Post{ID: 3, Content: "hi", PublishToTwitter: true, PublishToFacebook: true}
	start := time.Now()
	results := s.Fanout(context.Background(), post)

	require.Less(t, time.Since(start), 400*time.Millisecond)
	require.Nil(t, results.Twitter)
	require.NotNil(t, results.Facebook)
}

func TestPublishMarksPublishedEvenWhenEveryPlatformFails(t *testing.T) {
	tw, ig, fb, pin, clients := fourClients()
	boom := errors.New("down")
	tw.err, ig.err, fb.err, pin.err = boom, boom, boom, boom

	var recorded *models.PlatformResults
	repo := &fakeRepo{
		markPublished: func(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
			recorded = results
			return true, nil
		},
	}
	s := NewPublisherService(testConfig(), repo, clients)

	post := &models.Post{
		ID: 4, Content: "hi",
		PublishToTwitter: true, PublishToInstagram: true, PublishToFacebook: true, PublishToPinterest: true,
	}
	results, published, err := s.Publish(context.Background(), post)

	require.NoError(t, err)
	require.True(t, published)
	require.False(t, results.AnySuccess())
	require.NotNil(t, recorded)
	require.Nil(t, recorded.Twitter)
	require.EqualValues(t, 1, repo.markCalls.Load())
}

func TestPublishAnySuccessPolicyLeavesFailedPostDue(t *testing.T) {
	tw, ig, fb, pin, clients := fourClients()
	boom := errors.New("down")
	tw.err, ig.err, fb.err, pin.err = boom, boom, boom, boom

	repo := &fakeRepo{
		markPublished: func(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
			return true, nil
		},
	}
	cfg := testConfig()
	cfg.PublishPolicy = config.PublishPolicyAnySuccess
	s := NewPublisherService(cfg, repo, clients)

	post := &models.Post{ID: 5, Content: "hi", PublishToTwitter: true}
	_, published, err := s.Publish(context.Background(), post)

	require.NoError(t, err)
	require.False(t, published)
	require.EqualValues(t, 0, repo.markCalls.Load())
}

func TestPublishReportsLostRaceWithoutError(t *testing.T) {
	_, _, _, _, clients := fourClients()
	repo := &fakeRepo{
		markPublished: func(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
			return false, nil
		},
	}
	s := NewPublisherService(testConfig(), repo, clients)

	post := &models.Post{ID: 6, Content: "hi", PublishToTwitter: true}
	_, published, err := s.Publish(context.Background(), post)

	require.NoError(t, err)
	require.False(t, published)
}

func TestPublishDueSkipsPostThatIsNoLongerDue(t *testing.T) {
	tw, _, _, _, clients := fourClients()
	future := time.Now().Add(time.Hour)
	repo := &fakeRepo{
		getByID: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, ScheduledTime: &future, PublishToTwitter: true}, nil
		},
		markPublished: func(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
			return true, nil
		},
	}
	s := NewPublisherService(testConfig(), repo, clients)

	require.NoError(t, s.PublishDue(context.Background(), 7))
	require.EqualValues(t, 0, tw.calls.Load())
	require.EqualValues(t, 0, repo.markCalls.Load())
}

func TestPublishDueSkipsMissingPost(t *testing.T) {
	_, _, _, _, clients := fourClients()
	repo := &fakeRepo{
		getByID: func(ctx context.Context, id int64) (*models.Post, error) {
			return nil, nil
		},
	}
	s := NewPublisherService(testConfig(), repo, clients)

	require.NoError(t, s.PublishDue(context.Background(), 8))
}

func TestPublishDuePublishesDuePost(t *testing.T) {
	tw, _, _, _, clients := fourClients()
	past := time.Now().Add(-time.Minute)
	repo := &fakeRepo{
		getByID: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, Content: "due", ScheduledTime: &past, PublishToTwitter: true}, nil
		},
		markPublished: func(ctx context.Context, id int64, results *models.PlatformResults) (bool, error) {
			require.NotNil(t, results.Twitter)
			return true, nil
		},
	}
	s := NewPublisherService(testConfig(), repo, clients)

	require.NoError(t, s.PublishDue(context.Background(), 9))
	require.EqualValues(t, 1, tw.calls.Load())
	require.EqualValues(t, 1, repo.markCalls.Load())
}

func TestDuePostPublishesOnceAcrossSweeps(t *testing.T) {
	tw, _, _, _, clients := fourClients()
	repo := newMemRepo()
	past := time.Now().Add(-time.Minute)
	id, err := repo.Create(context.Background(), &models.Post{
		Content:          "due once",
		ScheduledTime:    &past,
		PublishToTwitter: true,
	})
	require.NoError(t, err)
	s := NewPublisherService(testConfig(), repo, clients)

	// Two sweep ticks back to back. The first publishes; the second must
	// find nothing due because the post is now marked published.
	for i := 0; i < 2; i++ {
		posts, err := repo.ListDue(context.Background(), time.Now())
		require.NoError(t, err)
		for _, post := range posts {
			_, _, err := s.Publish(context.Background(), post)
			require.NoError(t, err)
		}
	}

	require.EqualValues(t, 1, tw.calls.Load())
	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, stored.IsPublished)
	require.Equal(t, "tw-1", *stored.TwitterPostID)
}
