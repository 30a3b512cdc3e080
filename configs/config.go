package config

import (
	"os"
	"strconv"
	"time"
)

type Twitter struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

type Instagram struct {
	AccountID   string
	AccessToken string
}

type Facebook struct {
	PageID      string
	AccessToken string
}

type Pinterest struct {
	AccessToken string
	BoardID     string
}

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type Anthropic struct {
	APIKey string
	Model  string
}

type Google struct {
	APIKey string
	CSEID  string
}

const (
	PublishPolicyAlways     = "always"
	PublishPolicyAnySuccess = "any_success"
)

type Config struct {
	Port             string
	PostgresURI      string
	RedisURI         string
	Timezone         string
	SweepInterval    time.Duration
	PublishPolicy    string
	PublishTimeout   time.Duration
	APIKey           string
	GuidancePath     string
	SeedExamples     bool
	MediaMirror      bool
	SerpAPIKey       string
	QueueConcurrency int
	Anthropic        Anthropic
	Google           Google
	Twitter          Twitter
	Instagram        Instagram
	Facebook         Facebook
	Pinterest        Pinterest
	R2               R2
}

func LoadConfig() *Config {
	return &Config{
		Port:             getEnv("PORT", "8000"),
		PostgresURI:      getEnv("POSTGRES_URI", ""),
		RedisURI:         getEnv("REDIS_URI", "127.0.0.1:6379"),
		Timezone:         getEnv("TIMEZONE", "America/Chicago"),
		SweepInterval:    getEnvDuration("SWEEP_INTERVAL", time.Minute),
		PublishPolicy:    getEnv("PUBLISH_POLICY", PublishPolicyAlways),
		PublishTimeout:   getEnvDuration("PUBLISH_TIMEOUT", 60*time.Second),
		APIKey:           getEnv("API_KEY", ""),
		GuidancePath:     getEnv("GUIDANCE_PATH", "guidance.yaml"),
		SeedExamples:     getEnvBool("SEED_EXAMPLES", true),
		MediaMirror:      getEnvBool("MEDIA_MIRROR", false),
		SerpAPIKey:       getEnv("SERP_API_KEY", ""),
		QueueConcurrency: getEnvInt("QUEUE_CONCURRENCY", 10),
		Anthropic: Anthropic{
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		},
		Google: Google{
			APIKey: getEnv("GOOGLE_API_KEY", ""),
			CSEID:  getEnv("GOOGLE_CSE_ID", ""),
		},
		Twitter: Twitter{
			APIKey:       getEnv("TWITTER_API_KEY", ""),
			APISecret:    getEnv("TWITTER_API_SECRET", ""),
			AccessToken:  getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret: getEnv("TWITTER_ACCESS_TOKEN_SECRET", ""),
		},
		Instagram: Instagram{
			AccountID:   getEnv("INSTAGRAM_ACCOUNT_ID", ""),
			AccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		},
		Facebook: Facebook{
			PageID:      getEnv("FACEBOOK_PAGE_ID", ""),
			AccessToken: getEnv("FACEBOOK_ACCESS_TOKEN", ""),
		},
		Pinterest: Pinterest{
			AccessToken: getEnv("PINTEREST_ACCESS_TOKEN", ""),
			BoardID:     getEnv("PINTEREST_BOARD_ID", ""),
		},
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
