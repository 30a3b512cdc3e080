package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/guidance"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const (
	serpAPIURL        = "https://serpapi.com/search.json"
	trendLimit        = 20
	previousPostLimit = 10
	generateMaxTokens = 1024
)

var extractTweetTool = transfer.AnthropicTool{
	Name:        "extract_tweet",
	Description: "Extract the final tweet and reasoning from the conversation",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tweet_text": map[string]any{
				"type":        "string",
				"description": "The final optimized tweet content",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Explanation of why this version was chosen",
			},
		},
		"required": []string{"tweet_text", "reasoning"},
	},
}

var predictPostingTimeTool = transfer.AnthropicTool{
	Name:        "predict_posting_time",
	Description: "Predict the optimal posting hour and reasoning",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"optimal_hour": map[string]any{
				"type":        "integer",
				"description": "The recommended posting hour in 24-hour format (0-23)",
				"minimum":     0,
				"maximum":     23,
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Explanation for the recommended posting time",
			},
		},
		"required": []string{"optimal_hour", "reasoning"},
	},
}

// GeneratorService runs the staged content pipeline: draft against current
// trends, review, refine, then extract the final tweet and a posting time.
// The progress callback receives one line per stage and may be nil.
type GeneratorService interface {
	GenerateText(ctx context.Context, progress func(string)) (*transfer.GenerateTextResponse, error)
}

type generatorService struct {
	cfg       *config.Config
	loc       *time.Location
	pr        repository.PostRepository
	guide     *guidance.Guidance
	anthropic *anthropicClient
	serpURL   string
	client    *http.Client
}

func NewGeneratorService(
	cfg *config.Config,
	loc *time.Location,
	pr repository.PostRepository,
	guide *guidance.Guidance) GeneratorService {
	return &generatorService{
		cfg:       cfg,
		loc:       loc,
		pr:        pr,
		guide:     guide,
		anthropic: newAnthropicClient(cfg.Anthropic),
		serpURL:   serpAPIURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *generatorService) GenerateText(ctx context.Context, progress func(string)) (*transfer.GenerateTextResponse, error) {
	notify := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	notify("Starting conversation...")
	conversation, err := s.startConversation(ctx)
	if err != nil {
		return nil, NewUpstreamError("generation", err)
	}
	notify("Conversation complete.")

	notify("Evaluating tweet drafts...")
	conversation, _, err = s.converse(ctx, conversation, s.guide.Review, nil)
	if err != nil {
		return nil, NewUpstreamError("generation", err)
	}
	notify("Evaluation complete.")

	notify("Refining best tweet...")
	conversation, refined, err := s.converse(ctx, conversation, s.guide.Refactor, nil)
	if err != nil {
		return nil, NewUpstreamError("generation", err)
	}
	notify("Refinement complete.")

	notify("Extracting tweet...")
	extraction, err := s.extractTweet(ctx, refined)
	if err != nil {
		return nil, NewUpstreamError("generation", err)
	}
	notify("Extraction complete.")

	notify("Predicting optimal posting time...")
	prediction, err := s.predictPostingTime(ctx, conversation, extraction.TweetText)
	if err != nil {
		return nil, NewUpstreamError("generation", err)
	}

	return &transfer.GenerateTextResponse{
		TweetText:       extraction.TweetText,
		Reasoning:       extraction.Reasoning,
		OptimalHour:     prediction.OptimalHour,
		TimingReasoning: prediction.Reasoning,
		SuggestedTime:   s.nextOccurrence(prediction.OptimalHour),
	}, nil
}

// startConversation renders the brand guidelines against current trends and
// recent posts and asks for the first round of drafts.
func (s *generatorService) startConversation(ctx context.Context) ([]transfer.AnthropicMessage, error) {
	promptCtx := guidance.PromptContext{
		Trends:        s.fetchTrends(ctx),
		TopicTrends:   s.topicTrends(ctx),
		PreviousPosts: s.previousPosts(ctx),
	}

	prompt, err := s.guide.RenderBrandGuidelines(promptCtx)
	if err != nil {
		return nil, err
	}

	// High temperature on the first pass so the drafts differ.
	temperature := 0.9
	conversation, _, err := s.converse(ctx, nil, prompt, &temperature)
	return conversation, err
}

// converse appends a user turn, sends the whole conversation, and appends the
// assistant reply. It returns the grown conversation and the reply text.
func (s *generatorService) converse(ctx context.Context, conversation []transfer.AnthropicMessage, prompt string, temperature *float64) ([]transfer.AnthropicMessage, string, error) {
	conversation = append(conversation, transfer.AnthropicMessage{Role: "user", Content: prompt})

	resp, err := s.anthropic.messages(ctx, &transfer.AnthropicRequest{
		MaxTokens:   generateMaxTokens,
		Temperature: temperature,
		Messages:    conversation,
	})
	if err != nil {
		return nil, "", err
	}

	text := responseText(resp)
	conversation = append(conversation, transfer.AnthropicMessage{Role: "assistant", Content: text})
	return conversation, text, nil
}

// extractTweet pulls the final tweet out of the refined reply with a tool
// call. A missing tool call degrades to an empty tweet rather than an error.
func (s *generatorService) extractTweet(ctx context.Context, refined string) (*transfer.TweetExtraction, error) {
	resp, err := s.anthropic.messages(ctx, &transfer.AnthropicRequest{
		MaxTokens: generateMaxTokens,
		Tools:     []transfer.AnthropicTool{extractTweetTool},
		Messages: []transfer.AnthropicMessage{{
			Role:    "user",
			Content: fmt.Sprintf("Extract the final optimized tweet and reasoning from this conversation: %s", refined),
		}},
	})
	if err != nil {
		return nil, err
	}

	var extraction transfer.TweetExtraction
	if err := toolInput(resp, "extract_tweet", &extraction); err != nil {
		slog.Info(err.Error())
		return &transfer.TweetExtraction{Reasoning: "Failed to extract tweet"}, nil
	}

	extraction.TweetText = stripMarkers(extraction.TweetText)
	return &extraction, nil
}

// predictPostingTime asks for the best posting hour with the full conversation
// as context. A missing tool call degrades to noon.
func (s *generatorService) predictPostingTime(ctx context.Context, conversation []transfer.AnthropicMessage, tweet string) (*transfer.PostingTimePrediction, error) {
	prompt, err := s.guide.RenderTiming(guidance.TimingContext{TweetContent: tweet})
	if err != nil {
		return nil, err
	}

	messages := append(append([]transfer.AnthropicMessage{}, conversation...),
		transfer.AnthropicMessage{Role: "user", Content: prompt})

	resp, err := s.anthropic.messages(ctx, &transfer.AnthropicRequest{
		MaxTokens: generateMaxTokens,
		Tools:     []transfer.AnthropicTool{predictPostingTimeTool},
		Messages:  messages,
	})
	if err != nil {
		return nil, err
	}

	var prediction transfer.PostingTimePrediction
	if err := toolInput(resp, "predict_posting_time", &prediction); err != nil {
		slog.Info(err.Error())
		return &transfer.PostingTimePrediction{OptimalHour: 12, Reasoning: "Failed to predict optimal posting time"}, nil
	}
	return &prediction, nil
}

// fetchTrends pulls the current US trending searches. Trend lookups are
// best-effort; failures degrade to an empty list so generation still runs.
func (s *generatorService) fetchTrends(ctx context.Context) []guidance.Trend {
	if s.cfg.SerpAPIKey == "" {
		return nil
	}

	params := url.Values{}
	params.Set("engine", "google_trends_trending_now")
	params.Set("geo", "US")
	params.Set("api_key", s.cfg.SerpAPIKey)

	var payload transfer.TrendingNowResponse
	if err := s.getJSON(ctx, s.serpURL+"?"+params.Encode(), &payload); err != nil {
		slog.Info(err.Error())
		return nil
	}

	trends := make([]guidance.Trend, 0, trendLimit)
	for _, item := range payload.TrendingSearches {
		if len(trends) == trendLimit {
			break
		}
		trend := guidance.Trend{Query: item.Query}
		for _, category := range item.Categories {
			trend.Categories = append(trend.Categories, category.Name)
		}
		trends = append(trends, trend)
	}
	return trends
}

// topicTrends pulls rising and top related queries for each guidance topic,
// deduplicated in order.
func (s *generatorService) topicTrends(ctx context.Context) []string {
	if s.cfg.SerpAPIKey == "" {
		return nil
	}

	seen := make(map[string]bool)
	var queries []string
	add := func(query string) {
		if query == "" || seen[query] {
			return
		}
		seen[query] = true
		queries = append(queries, query)
	}

	for _, topic := range s.guide.Topics {
		params := url.Values{}
		params.Set("engine", "google_trends")
		params.Set("q", topic)
		params.Set("data_type", "RELATED_QUERIES")
		params.Set("api_key", s.cfg.SerpAPIKey)

		var payload transfer.RelatedQueriesResponse
		if err := s.getJSON(ctx, s.serpURL+"?"+params.Encode(), &payload); err != nil {
			slog.Info(err.Error())
			continue
		}
		for _, q := range payload.RelatedQueries.Rising {
			add(q.Query)
		}
		for _, q := range payload.RelatedQueries.Top {
			add(q.Query)
		}
	}
	return queries
}

// previousPosts maps the latest posts into the slimmed view the prompt
// template renders.
func (s *generatorService) previousPosts(ctx context.Context) []guidance.PreviousPost {
	posts, err := s.pr.ListRecent(ctx, previousPostLimit)
	if err != nil {
		slog.Info(err.Error())
		return nil
	}

	previous := make([]guidance.PreviousPost, 0, len(posts))
	for _, post := range posts {
		entry := guidance.PreviousPost{
			Content:   post.Content,
			CreatedAt: post.CreatedAt.In(s.loc).Format("2006-01-02"),
			Status:    postStatus(post),
		}
		if post.ImageURL != nil {
			entry.ImageURL = *post.ImageURL
		}
		previous = append(previous, entry)
	}
	return previous
}

func postStatus(post *models.Post) string {
	switch {
	case post.IsPublished:
		return "PUBLISHED"
	case post.IsCanceled:
		return "CANCELED"
	case post.IsDraft:
		return "DRAFT"
	default:
		return "SCHEDULED"
	}
}

func (s *generatorService) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code from SerpAPI: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// nextOccurrence returns the next time the given hour comes around in the
// scheduling zone. Out-of-range hours fall back to noon.
func (s *generatorService) nextOccurrence(hour int) time.Time {
	if hour < 0 || hour > 23 {
		hour = 12
	}
	now := time.Now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// stripMarkers trims boilerplate lead-ins the model sometimes keeps around
// the extracted tweet, and drops trailing analysis sections.
func stripMarkers(text string) string {
	if idx := strings.Index(text, "Here's the optimized version:"); idx >= 0 {
		text = text[idx+len("Here's the optimized version:"):]
	} else if idx := strings.Index(text, "Final refined tweet:"); idx >= 0 {
		text = text[idx+len("Final refined tweet:"):]
	}

	if idx := strings.Index(text, "Key improvements:"); idx >= 0 {
		text = text[:idx]
	}
	if idx := strings.Index(text, "Improvements:"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
