package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/fpsim/internal/configs/env"
	"github.com/RishiKendai/fpsim/internal/similarity"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration
	SnapshotCacheTTL        time.Duration

	// Decision webhook
	DecisionWebhookURL    string
	DecisionWebhookAPIKey string

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute  int
	MaxIdentifyCandidates int

	// Computation
	ComputationTimeout time.Duration

	// Scoring
	Weights                similarity.Weights
	ScoreAcceptSimilarity  float64
	ScoreAcceptConfidence  float64
	ScoreRejectConfidence  float64
	ScoreRejectSimilarity  float64
	ScoreMaxRiskIndicators int
	ScoreReviewSimilarity  float64
	ScoreReviewConfidence  float64
	ScoreTemporalDecayDays float64

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}
	defaults := similarity.DefaultParams()

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "fingerprint:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "fingerprint:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "fingerprint:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour
	cacheHours := env.GetEnvInt("SNAPSHOT_CACHE_TTL_HOURS", 24)
	cfg.SnapshotCacheTTL = time.Duration(cacheHours) * time.Hour

	// Decision webhook
	cfg.DecisionWebhookURL = env.GetEnv("DECISION_WEBHOOK_URL", "")
	cfg.DecisionWebhookAPIKey = env.GetEnv("DECISION_WEBHOOK_API_KEY", "")

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "fpsim")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)
	cfg.MaxIdentifyCandidates = env.GetEnvInt("MAX_IDENTIFY_CANDIDATES", 500)

	// Computation
	timeoutMinutes := env.GetEnvInt("COMPUTATION_TIMEOUT_MINUTES", 5)
	cfg.ComputationTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Scoring
	for _, d := range similarity.AllDimensions() {
		cfg.Weights[d] = env.GetEnvFloat(weightKey(d), defaults.Weights[d])
	}
	cfg.ScoreAcceptSimilarity = env.GetEnvFloat("SCORE_ACCEPT_SIMILARITY", defaults.AcceptSimilarity)
	cfg.ScoreAcceptConfidence = env.GetEnvFloat("SCORE_ACCEPT_CONFIDENCE", defaults.AcceptConfidence)
	cfg.ScoreRejectConfidence = env.GetEnvFloat("SCORE_REJECT_CONFIDENCE", defaults.RejectConfidence)
	cfg.ScoreRejectSimilarity = env.GetEnvFloat("SCORE_REJECT_SIMILARITY", defaults.RejectSimilarity)
	cfg.ScoreMaxRiskIndicators = env.GetEnvInt("SCORE_MAX_RISK_INDICATORS", defaults.MaxRiskIndicators)
	cfg.ScoreReviewSimilarity = env.GetEnvFloat("SCORE_REVIEW_SIMILARITY", defaults.ReviewSimilarity)
	cfg.ScoreReviewConfidence = env.GetEnvFloat("SCORE_REVIEW_CONFIDENCE", defaults.ReviewConfidence)
	cfg.ScoreTemporalDecayDays = env.GetEnvFloat("SCORE_TEMPORAL_DECAY_DAYS", defaults.TemporalDecayDays)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetEnv("LOG_FORMAT", "json")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

// weightKey is the override variable for a dimension, e.g. WEIGHT_MEDIADEVICES
func weightKey(d similarity.Dimension) string {
	return "WEIGHT_" + strings.ToUpper(d.String())
}

// ScoringParams returns the engine parameters with the configured overrides
func (c *Config) ScoringParams() similarity.Params {
	params := similarity.DefaultParams()
	params.Weights = c.Weights
	params.AcceptSimilarity = c.ScoreAcceptSimilarity
	params.AcceptConfidence = c.ScoreAcceptConfidence
	params.RejectConfidence = c.ScoreRejectConfidence
	params.RejectSimilarity = c.ScoreRejectSimilarity
	params.MaxRiskIndicators = c.ScoreMaxRiskIndicators
	params.ReviewSimilarity = c.ScoreReviewSimilarity
	params.ReviewConfidence = c.ScoreReviewConfidence
	params.TemporalDecayDays = c.ScoreTemporalDecayDays
	return params
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DecisionWebhookURL != "" && c.DecisionWebhookAPIKey == "" {
		return fmt.Errorf("DECISION_WEBHOOK_API_KEY is required when DECISION_WEBHOOK_URL is set")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be greater than 0")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.MaxIdentifyCandidates <= 0 {
		return fmt.Errorf("MAX_IDENTIFY_CANDIDATES must be greater than 0")
	}
	if c.ComputationTimeout <= 0 {
		return fmt.Errorf("COMPUTATION_TIMEOUT_MINUTES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	if c.SnapshotCacheTTL <= 0 {
		return fmt.Errorf("SNAPSHOT_CACHE_TTL_HOURS must be greater than 0")
	}
	if err := c.ScoringParams().Validate(); err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}
	return nil
}
