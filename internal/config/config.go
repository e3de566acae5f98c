package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	// Inbound validation
	AllowedURLPrefix string

	// Workers AI
	AccountID  string
	APIToken   string
	AIBaseURL  string
	TextModel  string
	ImageModel string

	// Inference
	MaxAttempts         int
	TopComments         int
	InferenceRetryDelay time.Duration
	InferenceTimeout    time.Duration

	// Fetch
	FetchTimeout   time.Duration
	FetchMaxBytes  int64
	FetchUserAgent string

	// HTTP surface
	CORSAllowedOrigin string
	RateLimitRPS      float64
	RateLimitBurst    int
	WriteTimeout      time.Duration

	// LLM latency window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port:     envOr("PORT", "8787"),
		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		AllowedURLPrefix: envOr("ALLOWED_URL_PREFIX", "https://news.ycombinator.com/"),

		AccountID:  os.Getenv("CF_ACCOUNT_ID"),
		APIToken:   os.Getenv("CF_API_TOKEN"),
		AIBaseURL:  envOr("AI_BASE_URL", "https://api.cloudflare.com/client/v4"),
		TextModel:  envOr("TEXT_MODEL", "@cf/meta/llama-3-8b-instruct"),
		ImageModel: envOr("IMAGE_MODEL", "@cf/stabilityai/stable-diffusion-xl-base-1.0"),

		MaxAttempts:         envInt("MAX_ATTEMPTS", 3),
		TopComments:         envInt("TOP_COMMENTS", 5),
		InferenceRetryDelay: envDuration("INFERENCE_RETRY_DELAY", 0),
		InferenceTimeout:    envDuration("INFERENCE_TIMEOUT", 0),

		FetchTimeout:   envDuration("FETCH_TIMEOUT", 0),
		FetchMaxBytes:  envInt64("FETCH_MAX_BYTES", 10<<20), // 10MB
		FetchUserAgent: envOr("FETCH_USER_AGENT", "hnsum/1.0 (+https://github.com/dgallion1/hnsum)"),

		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		RateLimitRPS:      envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    envInt("RATE_LIMIT_BURST", 10),
		WriteTimeout:      envDuration("WRITE_TIMEOUT", 0),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.TopComments <= 0 {
		cfg.TopComments = 5
	}
	if cfg.InferenceRetryDelay < 0 {
		cfg.InferenceRetryDelay = 0
	}
	if cfg.FetchMaxBytes <= 0 {
		cfg.FetchMaxBytes = 10 << 20
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 10
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}
	cfg.AIBaseURL = strings.TrimRight(cfg.AIBaseURL, "/")

	return cfg
}

func (c Config) Validate() error {
	if c.AccountID == "" {
		return fmt.Errorf("CF_ACCOUNT_ID is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("CF_API_TOKEN is required")
	}
	if c.AllowedURLPrefix == "" {
		return fmt.Errorf("ALLOWED_URL_PREFIX must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}
