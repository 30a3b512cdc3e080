package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/media/upload"
	uploadtypes "github.com/michimani/gotwi/media/upload/types"
	"github.com/michimani/gotwi/tweet/managetweet"
	managetweettypes "github.com/michimani/gotwi/tweet/managetweet/types"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
)

type twitterClient struct {
	cfg   config.Twitter
	media MediaService

	once sync.Once
	api  *gotwi.Client
	err  error
}

func NewTwitterClient(cfg config.Twitter, media MediaService) PlatformClient {
	return &twitterClient{cfg: cfg, media: media}
}

func (c *twitterClient) Name() string {
	return models.PlatformTwitter
}

func (c *twitterClient) client() (*gotwi.Client, error) {
	c.once.Do(func() {
		c.api, c.err = gotwi.NewClient(&gotwi.NewClientInput{
			HTTPClient:           &http.Client{Timeout: 30 * time.Second},
			AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
			OAuthToken:           c.cfg.AccessToken,
			OAuthTokenSecret:     c.cfg.AccessSecret,
			APIKey:               c.cfg.APIKey,
			APIKeySecret:         c.cfg.APISecret,
		})
	})
	return c.api, c.err
}

func (c *twitterClient) Publish(ctx context.Context, content string, imageURL *string) (string, error) {
	api, err := c.client()
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("error creating twitter client: %w", err)
	}

	input := &managetweettypes.CreateInput{
		Text: gotwi.String(content),
	}

	if imageURL != nil && *imageURL != "" {
		mediaID, err := c.uploadImage(ctx, api, *imageURL)
		if err != nil {
			return "", err
		}
		input.Media = &managetweettypes.CreateInputMedia{MediaIDs: []string{mediaID}}
	}

	res, err := managetweet.Create(ctx, api, input)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("error posting tweet: %w", err)
	}

	return gotwi.StringValue(res.Data.ID), nil
}

func (c *twitterClient) uploadImage(ctx context.Context, api *gotwi.Client, imageURL string) (string, error) {
	data, kind, err := c.media.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	mediaType, category, err := tweetMediaType(kind.MIME.Value)
	if err != nil {
		return "", err
	}

	initRes, err := upload.Initialize(ctx, api, &uploadtypes.InitializeInput{
		MediaType:     mediaType,
		TotalBytes:    len(data),
		MediaCategory: category,
	})
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("error initializing media upload: %w", err)
	}

	mediaID := initRes.Data.MediaID

	appendInput := &uploadtypes.AppendInput{
		MediaID:      mediaID,
		Media:        bytes.NewReader(data),
		SegmentIndex: 0,
	}
	appendInput.GenerateBoundary()

	if _, err := upload.Append(ctx, api, appendInput); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("error appending media upload: %w", err)
	}

	if _, err := upload.Finalize(ctx, api, &uploadtypes.FinalizeInput{MediaID: mediaID}); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("error finalizing media upload: %w", err)
	}

	return mediaID, nil
}

func tweetMediaType(mime string) (uploadtypes.MediaType, uploadtypes.MediaCategory, error) {
	switch mime {
	case "image/jpeg":
		return uploadtypes.MediaTypeJPEG, uploadtypes.MediaCategoryTweetImage, nil
	case "image/png":
		return uploadtypes.MediaTypePNG, uploadtypes.MediaCategoryTweetImage, nil
	case "image/gif":
		return uploadtypes.MediaTypeGIF, uploadtypes.MediaCategoryTweetGIF, nil
	case "image/webp":
		return uploadtypes.MediaTypeWebP, uploadtypes.MediaCategoryTweetImage, nil
	}
	return "", "", fmt.Errorf("unsupported image type %s", mime)
}
