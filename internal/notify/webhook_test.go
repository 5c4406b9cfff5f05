package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/RishiKendai/fpsim/internal/models"
)

func reviewDecision() *models.Decision {
	return &models.Decision{
		VisitorID:  "visitor-1",
		SessionID:  "session-2",
		CapturedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Score: models.SimilarityScore{
			Overall:        0.64,
			Confidence:     0.7,
			RiskIndicators: []string{"generic_webgl_vendor"},
			Recommendation: models.RecommendationReview,
		},
	}
}

func TestNotifyPostsDecision(t *testing.T) {
	var received DecisionEvent
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, "secret-key")
	if err := client.Notify(context.Background(), reviewDecision()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if apiKey != "secret-key" {
		t.Errorf("Expected x-api-key header, got %q", apiKey)
	}
	if received.VisitorID != "visitor-1" || received.Recommendation != models.RecommendationReview {
		t.Errorf("Unexpected payload: %+v", received)
	}
	if len(received.RiskIndicators) != 1 || received.RiskIndicators[0] != "generic_webgl_vendor" {
		t.Errorf("Expected risk indicators in payload, got %v", received.RiskIndicators)
	}
}

func TestNotifyDisabled(t *testing.T) {
	client := NewWebhookClient("", "")
	if client.Enabled() {
		t.Fatal("Expected client without URL to be disabled")
	}
	if err := client.Notify(context.Background(), reviewDecision()); err != nil {
		t.Errorf("Expected disabled client to drop silently, got %v", err)
	}
}

func TestNotifyOpensBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL, "key")
	for i := 0; i < maxConsecutiveFails; i++ {
		if err := client.Notify(context.Background(), reviewDecision()); err == nil {
			t.Fatalf("Expected failure on attempt %d", i+1)
		}
	}

	err := client.Notify(context.Background(), reviewDecision())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected open breaker, got %v", err)
	}
	if got := hits.Load(); got != maxConsecutiveFails {
		t.Errorf("Expected %d requests to reach the server, got %d", maxConsecutiveFails, got)
	}
}
