package guidance

import (
	"log/slog"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

type ExamplePost struct {
	Content      string `yaml:"content"`
	ImageURL     string `yaml:"image_url"`
	HoursFromNow int    `yaml:"hours_from_now"`
	Draft        bool   `yaml:"draft"`
}

// Guidance carries the prompt template for each generation stage plus the
// posts that seed an empty database. Templates use text/template syntax;
// BrandGuidelines renders against PromptContext, Timing against
// TimingContext, Review and Refactor are sent as-is.
type Guidance struct {
	BrandGuidelines string        `yaml:"brand_guidelines"`
	Review          string        `yaml:"review"`
	Refactor        string        `yaml:"refactor"`
	Timing          string        `yaml:"timing"`
	Topics          []string      `yaml:"topics"`
	ExamplePosts    []ExamplePost `yaml:"example_posts"`
}

// Trend is one trending search with its category labels.
type Trend struct {
	Query      string
	Categories []string
}

// PreviousPost is the slimmed view of an earlier post handed to the model.
type PreviousPost struct {
	Content   string
	ImageURL  string
	CreatedAt string
	Status    string
}

// PromptContext is the data a BrandGuidelines render receives.
type PromptContext struct {
	Trends        []Trend
	TopicTrends   []string
	PreviousPosts []PreviousPost
}

// TimingContext is the data a Timing render receives.
type TimingContext struct {
	TweetContent string
}

const defaultBrandGuidelines = `You are an enthusiast who runs social media for a small software brand. Let's write authentic, conversational posts that real builders would appreciate.

1. Voice and Tone:
   - Write like you're texting a friend who also ships software
   - Share genuine wins, discoveries, and frustrations
   - Be human, imperfect, and relatable
   - No marketing language, sales pitches, or promotional phrasing
   - Casual humor and the occasional mishap are welcome

2. Twitter Essentials:
   - Keep under 280 characters
   - Emojis only where you'd naturally use one texting a friend
   - Hashtags: 0-1 if relevant, never forced
   - Skip formulaic calls-to-action

3. Content Inspiration:
   - Things you shipped or automated this week
   - Real "aha moments" and practical shortcuts
   - Opinions that might spark a conversation

4. Current Context:

   Trending Topics:{{range .Trends}}
   - {{.Query}}{{if .Categories}} ({{join .Categories ", "}}){{end}}{{end}}
{{if .TopicTrends}}
   Rising searches around our topics: {{join .TopicTrends ", "}}
{{end}}
   Recent Posts:{{range .PreviousPosts}}
   - POST ({{.CreatedAt}}) - {{.Status}}
     Content: {{.Content}}{{if .ImageURL}}
     Image: {{.ImageURL}}{{end}}{{end}}

Let's generate 3 unique post options. For each one, explain your reasoning and give it an engagement score out of 10.`

const defaultReview = `Based on these post options, which one do you think would perform best and why? Consider engagement potential, timeliness, and alignment with our voice. Give a detailed explanation of your choice.`

const defaultRefactor = `Could you make any final improvements to the chosen post to maximize its impact? Consider small tweaks to wording, emoji placement, or hashtag selection.`

const defaultTiming = `Analyze this post and predict the optimal posting time:

Post: {{.TweetContent}}

Consider:
1. The type of content
2. Typical user schedules
3. General social media engagement patterns
4. Time zones (focus on US time zones)

Provide a detailed prediction of the best posting hour (in 24-hour format) and explain why.`

func Default() *Guidance {
	return &Guidance{
		BrandGuidelines: defaultBrandGuidelines,
		Review:          defaultReview,
		Refactor:        defaultRefactor,
		Timing:          defaultTiming,
		Topics:          []string{"software development", "automation", "productivity"},
		ExamplePosts: []ExamplePost{
			{
				Content:      "Shipped a tiny scheduler today. It does one thing: posts when it says it will. Feels good. What did you ship this week?",
				HoursFromNow: 4,
			},
			{
				Content:      "Hot take: most cron bugs are timezone bugs wearing a disguise.",
				HoursFromNow: 28,
			},
			{
				Content:      "Draft: thread about why we picked boring technology for the posting pipeline.",
				Draft:        true,
				HoursFromNow: 0,
			},
			{
				Content:      "Automating the boring parts of social media so we can spend the saved hour arguing about tabs vs spaces.",
				HoursFromNow: 52,
			},
		},
	}
}

// Load reads the guidance file at path, falling back to the built-in default
// when the file is missing or malformed. Fields left empty in the file keep
// their defaults.
func Load(path string) *Guidance {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Info(err.Error())
		return Default()
	}

	var g Guidance
	if err := yaml.Unmarshal(data, &g); err != nil {
		slog.Info(err.Error())
		return Default()
	}

	def := Default()
	if g.BrandGuidelines == "" {
		g.BrandGuidelines = def.BrandGuidelines
	}
	if g.Review == "" {
		g.Review = def.Review
	}
	if g.Refactor == "" {
		g.Refactor = def.Refactor
	}
	if g.Timing == "" {
		g.Timing = def.Timing
	}
	if len(g.Topics) == 0 {
		g.Topics = def.Topics
	}
	if len(g.ExamplePosts) == 0 {
		g.ExamplePosts = def.ExamplePosts
	}
	return &g
}

// RenderBrandGuidelines fills the opening prompt with trend and history
// context.
func (g *Guidance) RenderBrandGuidelines(ctx PromptContext) (string, error) {
	return render("brand_guidelines", g.BrandGuidelines, ctx)
}

// RenderTiming fills the posting-time prompt with the chosen post.
func (g *Guidance) RenderTiming(ctx TimingContext) (string, error) {
	return render("timing", g.Timing, ctx)
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{"join": strings.Join}).Parse(text)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return b.String(), nil
}
