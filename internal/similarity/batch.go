package similarity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/models"
)

// ErrPoolClosed is returned when the worker pool closes before every result
// is collected
var ErrPoolClosed = errors.New("worker pool closed")

// CompareResult pairs a keyed comparison with its score
type CompareResult struct {
	Key   string
	Score *models.SimilarityScore
}

// CompareJob scores one comparison on the worker pool
type CompareJob struct {
	Key        string
	Comparison *models.Comparison
	Engine     *Engine
	ResultChan chan<- CompareResult
}

func (j *CompareJob) Execute(ctx context.Context) error {
	score := j.Engine.Calculate(j.Comparison)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.ResultChan <- CompareResult{Key: j.Key, Score: score}:
		return nil
	}
}

// CompareAll scores every keyed comparison on the pool. If ctx ends or the
// pool closes while collecting, the results gathered so far are returned with
// the error.
func CompareAll(ctx context.Context, pool *WorkerPool, engine *Engine, comparisons map[string]*models.Comparison) (map[string]*models.SimilarityScore, error) {
	resultChan := make(chan CompareResult, len(comparisons))

	submitted := 0
	for key, comparison := range comparisons {
		job := &CompareJob{
			Key:        key,
			Comparison: comparison,
			Engine:     engine,
			ResultChan: resultChan,
		}
		if err := pool.Submit(ctx, job); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to submit job")
			return nil, err
		}
		submitted++
	}

	results := make(map[string]*models.SimilarityScore, submitted)
	for len(results) < submitted {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		case <-pool.ctx.Done():
			// queued jobs are dropped once the pool closes
			return results, fmt.Errorf("%w: %w", ErrPoolClosed, pool.ctx.Err())
		case r := <-resultChan:
			results[r.Key] = r.Score
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
