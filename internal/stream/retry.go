package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/metrics"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 500 * time.Millisecond
	defaultMaxDelay   = 10 * time.Second
)

// listPusher is the part of the Redis client the dead-letter queue needs
type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// DeadLetter is the entry pushed to the dead-letter list
type DeadLetter struct {
	MessageID string                 `json:"messageId"`
	Fields    map[string]interface{} `json:"fields"`
	Error     string                 `json:"error"`
	Attempts  int                    `json:"attempts"`
	FailedAt  time.Time              `json:"failedAt"`
}

// RetryHandler retries message processing with exponential backoff and
// dead-letters messages that keep failing
type RetryHandler struct {
	client     listPusher
	deadLetter string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewRetryHandler(client listPusher, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:     client,
		deadLetter: deadLetterKey,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
}

// backoff returns the wait before the given retry (1-based)
func (h *RetryHandler) backoff(retry int) time.Duration {
	delay := h.baseDelay << (retry - 1)
	if delay <= 0 || delay > h.maxDelay {
		return h.maxDelay
	}
	return delay
}

// RetryWithBackoff runs fn until it succeeds or the retries are exhausted.
// On exhaustion the message is dead-lettered and the last error returned.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordStreamMessage("retried")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.backoff(attempt)):
			}
		}

		attempts++
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		log.Warn().
			Err(lastErr).
			Str("message_id", messageID).
			Int("attempt", attempts).
			Msg("Message processing failed")
	}

	if err := h.sendToDeadLetter(ctx, messageID, fields, lastErr, attempts); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to dead-letter message")
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func (h *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error, attempts int) error {
	data, err := json.Marshal(DeadLetter{
		MessageID: messageID,
		Fields:    fields,
		Error:     cause.Error(),
		Attempts:  attempts,
		FailedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}
	if err := h.client.LPush(ctx, h.deadLetter, data).Err(); err != nil {
		return fmt.Errorf("failed to push dead letter: %w", err)
	}

	metrics.RecordStreamMessage("dead_lettered")
	log.Error().
		Str("message_id", messageID).
		Str("dead_letter_key", h.deadLetter).
		Msg("Message moved to dead-letter queue")
	return nil
}
