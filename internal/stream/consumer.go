package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/metrics"
	"github.com/RishiKendai/fpsim/internal/models"
)

const (
	readCount       = 10
	readBlock       = time.Second
	pelMinIdle      = time.Minute
	pelBatch        = 100
	pelInterval     = 30 * time.Second
	cleanupInterval = time.Hour
)

// SnapshotRecorder scores and stores an ingested snapshot
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, snapshot *models.StoredSnapshot) (*models.RecognitionResult, error)
}

// Consumer reads fingerprint snapshots from a Redis stream consumer group
type Consumer struct {
	client            *redis.Client
	streamKey         string
	consumerGroup     string
	consumerName      string
	recorder          SnapshotRecorder
	retryHandler      *RetryHandler
	retentionDuration time.Duration
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	recorder SnapshotRecorder,
	retryHandler *RetryHandler,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:            client,
		streamKey:         streamKey,
		consumerGroup:     consumerGroup,
		consumerName:      consumerName,
		recorder:          recorder,
		retryHandler:      retryHandler,
		retentionDuration: retentionDuration,
	}
}

// Start consumes until ctx is cancelled. Pending entries left by crashed
// consumers are claimed on startup and then periodically.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.createConsumerGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group")
	}

	if err := c.recoverPEL(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover PEL messages on startup")
	}

	go c.maintain(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("Error consuming messages")
			time.Sleep(time.Second)
		}
	}
}

func (c *Consumer) createConsumerGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Debug().Str("group", c.consumerGroup).Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created consumer group")
	return nil
}

// maintain runs PEL recovery and stream trimming on their own tickers
func (c *Consumer) maintain(ctx context.Context) {
	pelTicker := time.NewTicker(pelInterval)
	defer pelTicker.Stop()
	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	if err := c.trim(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run initial stream trim")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stream maintenance shutting down")
			return
		case <-pelTicker.C:
			if err := c.recoverPEL(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to recover PEL messages")
			}
		case <-cleanupTicker.C:
			if err := c.trim(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to trim stream")
			}
		}
	}
}

// recoverPEL claims entries that have been pending for too long
func (c *Consumer) recoverPEL(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  pelBatch,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get pending messages: %w", err)
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= pelMinIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  pelMinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim messages: %w", err)
	}

	log.Info().Int("claimed", len(claimed)).Msg("Claimed idle PEL messages")
	for i := range claimed {
		if err := c.processMessage(ctx, &claimed[i]); err != nil {
			log.Error().Err(err).Str("message_id", claimed[i].ID).Msg("Failed to process claimed PEL message")
		}
	}
	return nil
}

func (c *Consumer) consume(ctx context.Context) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    readCount,
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}
		for i := range stream.Messages {
			if err := c.processMessage(ctx, &stream.Messages[i]); err != nil {
				log.Error().Err(err).Str("message_id", stream.Messages[i].ID).Msg("Failed to process message")
			}
		}
	}
	return nil
}

// processMessage records one snapshot. Unparseable messages are acknowledged
// and dropped; processing failures go through the retry handler.
func (c *Consumer) processMessage(ctx context.Context, msg *redis.XMessage) error {
	streamMsg := toStreamMessage(msg)

	snapshot, err := ParseSnapshotMessage(streamMsg)
	if err != nil {
		metrics.RecordStreamMessage("invalid")
		_ = c.acknowledge(ctx, msg.ID)
		return err
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		// each attempt gets a fresh copy so a failed insert leaves no ID behind
		attempt := *snapshot
		result, err := c.recorder.RecordSnapshot(ctx, &attempt)
		if err != nil {
			return err
		}
		log.Debug().
			Str("message_id", msg.ID).
			Str("visitorId", result.VisitorID).
			Bool("firstSeen", result.FirstSeen).
			Str("recommendation", string(result.Recommendation)).
			Msg("Snapshot recorded from stream")
		return nil
	}, msg.ID, msg.Values)
	if err != nil {
		if ctx.Err() != nil {
			// left in the PEL for the next consumer to claim
			return err
		}
		// Dead-lettered by the retry handler; acknowledge so it leaves the PEL
		_ = c.acknowledge(ctx, msg.ID)
		return err
	}

	metrics.RecordStreamMessage("processed")
	return c.acknowledge(ctx, msg.ID)
}

func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		switch v := val.(type) {
		case string:
			fields[key] = v
		case []byte:
			fields[key] = string(v)
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return &StreamMessage{ID: msg.ID, Fields: fields}
}

// trim removes entries older than the retention window
func (c *Consumer) trim(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retentionDuration)
	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minStreamID(cutoff)).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}

	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Dur("retention", c.retentionDuration).
			Str("cutoff_time", cutoff.Format(time.RFC3339)).
			Msg("Trimmed old messages from stream")
	}
	return nil
}

// minStreamID is the smallest stream ID generated at or after t
func minStreamID(t time.Time) string {
	return fmt.Sprintf("%d-0", t.UnixMilli())
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return err
	}
	log.Debug().Str("message_id", messageID).Msg("Message acknowledged")
	return nil
}
