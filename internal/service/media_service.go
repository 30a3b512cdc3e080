package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/hashicorp/go-retryablehttp"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/maheshrc27/postpilot/configs"
)

// Remote images larger than this are rejected.
const maxImageBytes = 20 << 20

type MediaService interface {
	Fetch(ctx context.Context, url string) ([]byte, types.Type, error)
	Mirror(ctx context.Context, imageURL string) (string, error)
}

type mediaService struct {
	cfg    *config.Config
	client *http.Client
}

func NewMediaService(cfg *config.Config) MediaService {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.Logger = nil
	return &mediaService{cfg: cfg, client: retry.StandardClient()}
}

// Fetch downloads a remote image and sniffs its type from the bytes.
func (m *mediaService) Fetch(ctx context.Context, url string) ([]byte, types.Type, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, types.Unknown, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, types.Unknown, fmt.Errorf("error downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.Unknown, fmt.Errorf("unexpected response status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		slog.Info(err.Error())
		return nil, types.Unknown, fmt.Errorf("error reading image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, types.Unknown, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return nil, types.Unknown, fmt.Errorf("unsupported file type: %w", err)
	}
	if !filetype.IsImage(data) {
		return nil, types.Unknown, fmt.Errorf("file type %s is not an image", kind.Extension)
	}

	return data, kind, nil
}

// Mirror copies a remote image into the R2 bucket and returns the public URL
// it is served from.
func (m *mediaService) Mirror(ctx context.Context, imageURL string) (string, error) {
	data, kind, err := m.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	key := fmt.Sprintf("media/%s.%s", id, kind.Extension)

	if err := m.uploadToR2(ctx, key, data, kind.MIME.Value); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", m.cfg.R2.PublicBaseURL, key), nil
}

func (m *mediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.cfg.R2.AccessKey, m.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.cfg.R2.AccountID))
	}), nil
}

func (m *mediaService) uploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := m.r2Client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(m.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
