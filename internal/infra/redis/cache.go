package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/metrics"
	"github.com/RishiKendai/fpsim/internal/models"
)

const snapshotKeyPrefix = "visitor_snapshot:"

func snapshotKey(visitorID string) string {
	return snapshotKeyPrefix + visitorID
}

// SnapshotCache keeps the latest snapshot of each visitor in Redis
type SnapshotCache struct {
	client *Client
	ttl    time.Duration
}

func NewSnapshotCache(client *Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or nil on a miss
func (c *SnapshotCache) Get(ctx context.Context, visitorID string) (*models.StoredSnapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup("miss")
		return nil, nil
	}
	if err != nil {
		metrics.RecordCacheLookup("error")
		return nil, fmt.Errorf("failed to read cached snapshot: %w", err)
	}

	var snapshot models.StoredSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		metrics.RecordCacheLookup("error")
		log.Warn().Err(err).Str("visitorId", visitorID).Msg("Discarding unreadable cached snapshot")
		return nil, nil
	}

	metrics.RecordCacheLookup("hit")
	return &snapshot, nil
}

func (c *SnapshotCache) Set(ctx context.Context, snapshot *models.StoredSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(snapshot.VisitorID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}
