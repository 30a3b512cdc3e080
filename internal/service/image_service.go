package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const (
	searchResultCount   = 10
	imageCandidateLimit = 4
	evalWorkers         = 4
	minAcceptScore      = 7
	// Vision requests reject larger images.
	visionMaxBytes = 5 << 20
)

var generateQueriesTool = transfer.AnthropicTool{
	Name:        "generate_queries",
	Description: "Generate 3 specific search queries that would find images matching the tweet's content",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"queries": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "List of 3 specific search queries",
			},
		},
		"required": []string{"queries"},
	},
}

var rateMatchTool = transfer.AnthropicTool{
	Name:        "rate_match",
	Description: "Rate how well the image matches the tweet on a scale of 1-10",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 10,
			},
			"explanation": map[string]any{
				"type": "string",
			},
		},
		"required": []string{"score", "explanation"},
	},
}

// ImageService finds an image for a tweet: model-generated search queries,
// an image search per query, a vision rating per candidate, then the best
// match above the acceptance threshold. The progress callback receives one
// line per step and may be nil.
type ImageService interface {
	GenerateImage(ctx context.Context, req *transfer.GenerateImageRequest, progress func(string)) (*transfer.GenerateImageResponse, error)
}

type imageService struct {
	cfg       *config.Config
	pr        repository.PostRepository
	media     MediaService
	anthropic *anthropicClient
	// searchEndpoint overrides the Custom Search API host when set.
	searchEndpoint string
}

func NewImageService(cfg *config.Config, pr repository.PostRepository, media MediaService) ImageService {
	return &imageService{
		cfg:       cfg,
		pr:        pr,
		media:     media,
		anthropic: newAnthropicClient(cfg.Anthropic),
	}
}

func (s *imageService) GenerateImage(ctx context.Context, req *transfer.GenerateImageRequest, progress func(string)) (*transfer.GenerateImageResponse, error) {
	if req == nil || req.TweetText == "" {
		return nil, NewValidationError("tweet_text", "cannot be empty")
	}
	notify := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	notify("Starting image search...")
	queries, err := s.generateQueries(ctx, req.TweetText)
	if err != nil {
		return nil, NewUpstreamError("image generation", err)
	}
	notify("Generated image queries.")

	var candidates []transfer.ImageCandidate
	for _, query := range queries {
		notify("Fetching image URLs for query: " + query)
		urls, err := s.searchImages(ctx, query)
		if err != nil {
			slog.Info(err.Error())
			continue
		}
		notify("Evaluating images for query: " + query)
		candidates = append(candidates, s.evaluateImages(ctx, req.TweetText, urls)...)
	}

	if len(candidates) == 0 {
		return nil, ErrNoImages
	}

	// Best score first; among equals the terser explanation wins.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return len(candidates[i].Explanation) < len(candidates[j].Explanation)
	})
	best := candidates[0]
	if best.Score < minAcceptScore {
		return nil, &LowScoreError{Score: best.Score}
	}

	imageURL := best.URL
	if s.cfg.MediaMirror {
		if mirrored, err := s.media.Mirror(ctx, best.URL); err == nil {
			imageURL = mirrored
		} else {
			slog.Info(err.Error())
		}
	}

	if err := s.persist(ctx, req, imageURL, best.Score); err != nil {
		return nil, err
	}

	return &transfer.GenerateImageResponse{
		ImageURL:    imageURL,
		Score:       best.Score,
		Explanation: best.Explanation,
	}, nil
}

// generateQueries asks the model for search queries matching the tweet. A
// missing tool call degrades to no queries.
func (s *imageService) generateQueries(ctx context.Context, tweet string) ([]string, error) {
	resp, err := s.anthropic.messages(ctx, &transfer.AnthropicRequest{
		MaxTokens: generateMaxTokens,
		Tools:     []transfer.AnthropicTool{generateQueriesTool},
		Messages: []transfer.AnthropicMessage{{
			Role:    "user",
			Content: fmt.Sprintf("Generate 3 specific search queries to find images that would match this tweet: %s", tweet),
		}},
	})
	if err != nil {
		return nil, err
	}

	var list transfer.SearchQueryList
	if err := toolInput(resp, "generate_queries", &list); err != nil {
		slog.Info(err.Error())
		return nil, nil
	}
	return list.Queries, nil
}

// searchImages runs one licensed image search and keeps the first unused
// candidates. URLs already attached to a post are skipped, as are stockcake
// watermarked results.
func (s *imageService) searchImages(ctx context.Context, query string) ([]string, error) {
	opts := []option.ClientOption{option.WithAPIKey(s.cfg.Google.APIKey)}
	if s.searchEndpoint != "" {
		opts = append(opts, option.WithEndpoint(s.searchEndpoint))
	}
	search, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating search client: %w", err)
	}

	resp, err := search.Cse.List().
		Cx(s.cfg.Google.CSEID).
		SearchType("image").
		Rights("cc_publicdomain,cc_attribute,cc_sharealike").
		Q(query).
		Num(searchResultCount).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("image search error: %w", err)
	}

	urls := make([]string, 0, imageCandidateLimit)
	for _, item := range resp.Items {
		if item.Link == "" || strings.Contains(strings.ToLower(item.Link), "stockcake") {
			continue
		}
		used, err := s.pr.IsImageURLUsed(ctx, item.Link)
		if err != nil {
			slog.Info(err.Error())
			continue
		}
		if used {
			continue
		}
		urls = append(urls, item.Link)
		if len(urls) == imageCandidateLimit {
			break
		}
	}
	return urls, nil
}

// evaluateImages rates every candidate concurrently. Result order follows the
// input order.
func (s *imageService) evaluateImages(ctx context.Context, tweet string, urls []string) []transfer.ImageCandidate {
	results := make([]transfer.ImageCandidate, len(urls))
	sem := make(chan struct{}, evalWorkers)
	var wg sync.WaitGroup

	for i, imageURL := range urls {
		wg.Add(1)
		go func(i int, imageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rating := s.rateMatch(ctx, tweet, imageURL)
			results[i] = transfer.ImageCandidate{
				URL:         imageURL,
				Score:       rating.Score,
				Explanation: rating.Explanation,
			}
		}(i, imageURL)
	}
	wg.Wait()
	return results
}

// rateMatch downloads the image and asks the model to score the pairing.
// Failures score zero so one bad URL cannot sink the batch.
func (s *imageService) rateMatch(ctx context.Context, tweet, imageURL string) transfer.ImageMatchRating {
	data, kind, err := s.media.Fetch(ctx, imageURL)
	if err != nil {
		slog.Info(err.Error())
		return transfer.ImageMatchRating{Explanation: err.Error()}
	}
	if len(data) > visionMaxBytes {
		return transfer.ImageMatchRating{Explanation: fmt.Sprintf("image exceeds %d bytes", visionMaxBytes)}
	}

	resp, err := s.anthropic.messages(ctx, &transfer.AnthropicRequest{
		MaxTokens: generateMaxTokens,
		Tools:     []transfer.AnthropicTool{rateMatchTool},
		Messages: []transfer.AnthropicMessage{{
			Role: "user",
			Content: []transfer.AnthropicContent{
				{
					Type: "image",
					Source: &transfer.AnthropicImageSource{
						Type:      "base64",
						MediaType: kind.MIME.Value,
						Data:      base64.StdEncoding.EncodeToString(data),
					},
				},
				{
					Type: "text",
					Text: fmt.Sprintf("Rate how well this image matches the tweet: '%s' on a scale of 1-10, where 10 is perfect match.", tweet),
				},
			},
		}},
	})
	if err != nil {
		slog.Info(err.Error())
		return transfer.ImageMatchRating{Explanation: err.Error()}
	}

	var rating transfer.ImageMatchRating
	if err := toolInput(resp, "rate_match", &rating); err != nil {
		return transfer.ImageMatchRating{Explanation: "Failed to evaluate"}
	}
	return rating
}

// persist attaches the image to the named post, or files a new draft pairing
// the tweet with the image when no post was named.
func (s *imageService) persist(ctx context.Context, req *transfer.GenerateImageRequest, imageURL string, score int) error {
	if req.PostID != nil {
		post, err := s.pr.GetByID(ctx, *req.PostID)
		if err != nil {
			return err
		}
		if post == nil {
			return ErrNotFound
		}
		return s.pr.AttachImage(ctx, *req.PostID, imageURL, score)
	}

	draft := models.Post{
		Content:          req.TweetText,
		IsDraft:          true,
		PublishToTwitter: true,
	}
	id, err := s.pr.Create(ctx, &draft)
	if err != nil {
		return err
	}
	return s.pr.AttachImage(ctx, id, imageURL, score)
}
