package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/RishiKendai/fpsim/internal/metrics"
	"github.com/RishiKendai/fpsim/internal/models"
)

const (
	breakerName         = "decision-webhook"
	maxConsecutiveFails = 5
	openTimeout         = 30 * time.Second
	requestTimeout      = 10 * time.Second
)

// DecisionEvent is the payload posted for a review or reject decision
type DecisionEvent struct {
	VisitorID      string                `json:"visitorId"`
	SessionID      string                `json:"sessionId,omitempty"`
	Recommendation models.Recommendation `json:"recommendation"`
	Overall        float64               `json:"overall"`
	Confidence     float64               `json:"confidence"`
	RiskIndicators []string              `json:"riskIndicators"`
	CapturedAt     time.Time             `json:"capturedAt"`
}

// WebhookClient forwards decisions to an external endpoint behind a circuit
// breaker. A client without a URL is disabled and drops every decision.
type WebhookClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[struct{}]
}

func NewWebhookClient(url, apiKey string) *WebhookClient {
	metrics.SetCircuitBreakerState(breakerName, int(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})

	return &WebhookClient{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		cb:         cb,
	}
}

func (c *WebhookClient) Enabled() bool {
	return c.url != ""
}

// Notify posts a decision. It fails fast with gobreaker.ErrOpenState while
// the breaker is open.
func (c *WebhookClient) Notify(ctx context.Context, decision *models.Decision) error {
	if !c.Enabled() {
		return nil
	}

	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.post(ctx, eventFor(decision))
	})
	switch {
	case err == nil:
		metrics.RecordWebhookDelivery("delivered")
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordWebhookDelivery("rejected")
	default:
		metrics.RecordWebhookDelivery("failed")
	}
	return err
}

func eventFor(d *models.Decision) DecisionEvent {
	risks := d.Score.RiskIndicators
	if risks == nil {
		risks = []string{}
	}
	return DecisionEvent{
		VisitorID:      d.VisitorID,
		SessionID:      d.SessionID,
		Recommendation: d.Score.Recommendation,
		Overall:        d.Score.Overall,
		Confidence:     d.Score.Confidence,
		RiskIndicators: risks,
		CapturedAt:     d.CapturedAt,
	}
}

func (c *WebhookClient) post(ctx context.Context, event DecisionEvent) error {
	reqBody, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
