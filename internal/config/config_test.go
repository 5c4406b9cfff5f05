package config

import (
	"strings"
	"testing"
	"time"

	"github.com/RishiKendai/fpsim/internal/similarity"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "fpsim")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	if cfg.RedisStreamKey != "fingerprint:stream" {
		t.Errorf("Expected default stream key, got %s", cfg.RedisStreamKey)
	}
	if cfg.SnapshotCacheTTL != 24*time.Hour {
		t.Errorf("Expected 24h cache TTL, got %s", cfg.SnapshotCacheTTL)
	}
	if cfg.Weights != similarity.DefaultWeights() {
		t.Errorf("Expected default weights, got %v", cfg.Weights)
	}
	if cfg.ScoringParams() != similarity.DefaultParams() {
		t.Error("Expected default scoring params")
	}
}

func TestLoadScoringOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WEIGHT_CANVAS", "0.3")
	t.Setenv("WEIGHT_MEDIADEVICES", "0")
	t.Setenv("SCORE_ACCEPT_SIMILARITY", "0.9")
	t.Setenv("SCORE_MAX_RISK_INDICATORS", "1")
	t.Setenv("SCORE_TEMPORAL_DECAY_DAYS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	params := cfg.ScoringParams()

	if params.Weights[similarity.Canvas] != 0.3 {
		t.Errorf("Expected canvas weight 0.3, got %f", params.Weights[similarity.Canvas])
	}
	if params.Weights[similarity.MediaDevices] != 0 {
		t.Errorf("Expected media devices weight 0, got %f", params.Weights[similarity.MediaDevices])
	}
	if params.Weights[similarity.WebGL] != similarity.DefaultWeights()[similarity.WebGL] {
		t.Error("Expected untouched weights to keep their defaults")
	}
	if params.AcceptSimilarity != 0.9 || params.MaxRiskIndicators != 1 || params.TemporalDecayDays != 60 {
		t.Errorf("Expected threshold overrides, got %+v", params)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"valid", nil, ""},
		{"missing mongo uri", map[string]string{"MONGO_URI": ""}, "MONGO_URI"},
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET"},
		{"webhook without api key", map[string]string{"DECISION_WEBHOOK_URL": "https://hooks.example.com"}, "DECISION_WEBHOOK_API_KEY"},
		{"zero concurrency", map[string]string{"MAX_CONCURRENT_COMPUTE": "0"}, "MAX_CONCURRENT_COMPUTE"},
		{"negative weight", map[string]string{"WEIGHT_FONTS": "-1"}, "scoring"},
		{"threshold out of range", map[string]string{"SCORE_REVIEW_CONFIDENCE": "1.5"}, "scoring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
