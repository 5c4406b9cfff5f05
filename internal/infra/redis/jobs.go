package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/models"
)

const jobTTL = 12 * time.Hour

// ErrJobNotFound is returned for unknown or expired identify jobs
var ErrJobNotFound = errors.New("identify job not found")

var validSteps = map[models.Step]bool{
	models.StepInitiated: true,
	models.StepStarted:   true,
	models.StepComparing: true,
	models.StepCompleted: true,
	models.StepFailed:    true,
}

func jobStatusKey(jobID string) string {
	return "identify_job_status:" + jobID
}

func jobResultKey(jobID string) string {
	return "identify_job_result:" + jobID
}

// JobStore tracks identify jobs in Redis
type JobStore struct {
	client *Client
}

func NewJobStore(client *Client) *JobStore {
	return &JobStore{client: client}
}

func (s *JobStore) UpdateStatus(ctx context.Context, jobID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := jobStatusKey(jobID)
	if err := s.client.Set(ctx, rkey, string(step), jobTTL).Err(); err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("jobId", jobID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().Str("jobId", jobID).Str("step", string(step)).Msg("Status updated in Redis")
	return nil
}

// Complete stores the ranked matches and marks the job completed
func (s *JobStore) Complete(ctx context.Context, jobID string, matches []models.CandidateMatch) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to encode matches: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, jobResultKey(jobID), data, jobTTL)
		pipe.Set(ctx, jobStatusKey(jobID), string(models.StepCompleted), jobTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store identify result: %w", err)
	}
	return nil
}

// Status returns the job step and, once completed, its matches
func (s *JobStore) Status(ctx context.Context, jobID string) (*models.IdentifyStatusResponse, error) {
	step, err := s.client.Get(ctx, jobStatusKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job status: %w", err)
	}

	resp := &models.IdentifyStatusResponse{JobID: jobID, Step: models.Step(step)}
	if resp.Step != models.StepCompleted {
		return resp, nil
	}

	data, err := s.client.Get(ctx, jobResultKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job result: %w", err)
	}
	if err := json.Unmarshal(data, &resp.Matches); err != nil {
		return nil, fmt.Errorf("failed to decode job result: %w", err)
	}
	return resp, nil
}
