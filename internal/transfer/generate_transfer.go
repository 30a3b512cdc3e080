package transfer

import (
	"encoding/json"
	"time"
)

type GenerateTextResponse struct {
	TweetText       string    `json:"tweet_text"`
	Reasoning       string    `json:"reasoning"`
	OptimalHour     int       `json:"optimal_hour"`
	TimingReasoning string    `json:"timing_reasoning"`
	SuggestedTime   time.Time `json:"suggested_time"`
}

type GenerateImageRequest struct {
	TweetText string `json:"tweet_text"`
	PostID    *int64 `json:"post_id,omitempty"`
}

type GenerateImageResponse struct {
	ImageURL    string `json:"image_url"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// ImageCandidate is one scored search result.
type ImageCandidate struct {
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// TweetExtraction is the extract_tweet tool payload.
type TweetExtraction struct {
	TweetText string `json:"tweet_text"`
	Reasoning string `json:"reasoning"`
}

// PostingTimePrediction is the predict_posting_time tool payload.
type PostingTimePrediction struct {
	OptimalHour int    `json:"optimal_hour"`
	Reasoning   string `json:"reasoning"`
}

// SearchQueryList is the generate_queries tool payload.
type SearchQueryList struct {
	Queries []string `json:"queries"`
}

// ImageMatchRating is the rate_match tool payload.
type ImageMatchRating struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// AnthropicMessage content is either a plain string or a block list.
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type AnthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type AnthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Tools       []AnthropicTool    `json:"tools,omitempty"`
	Messages    []AnthropicMessage `json:"messages"`
}

type AnthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// AnthropicContent covers both request blocks (text, image) and response
// blocks (text, tool_use).
type AnthropicContent struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Name   string                `json:"name,omitempty"`
	Input  json.RawMessage       `json:"input,omitempty"`
	Source *AnthropicImageSource `json:"source,omitempty"`
}

type AnthropicResponse struct {
	Content []AnthropicContent `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// TrendingNowResponse is the SerpAPI google_trends_trending_now payload.
type TrendingNowResponse struct {
	TrendingSearches []struct {
		Query      string `json:"query"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"trending_searches"`
}

// RelatedQueriesResponse is the SerpAPI google_trends RELATED_QUERIES payload.
type RelatedQueriesResponse struct {
	RelatedQueries struct {
		Rising []struct {
			Query string `json:"query"`
		} `json:"rising"`
		Top []struct {
			Query string `json:"query"`
		} `json:"top"`
	} `json:"related_queries"`
}
