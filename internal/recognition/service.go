package recognition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/metrics"
	"github.com/RishiKendai/fpsim/internal/models"
	"github.com/RishiKendai/fpsim/internal/repository"
	"github.com/RishiKendai/fpsim/internal/similarity"
)

var (
	// ErrNoCandidates is returned by Identify for an empty candidate list
	ErrNoCandidates = errors.New("no candidates")
	// ErrInvalidSnapshot is returned for snapshots without a visitor
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snapshot *models.StoredSnapshot) error
	GetLatestSnapshot(ctx context.Context, visitorID string) (*models.StoredSnapshot, error)
	CountSnapshots(ctx context.Context, visitorID string) (int64, error)
}

type DecisionStore interface {
	InsertDecision(ctx context.Context, decision *models.Decision) error
	ListDecisions(ctx context.Context, visitorID string, limit int) ([]*models.Decision, error)
}

// SnapshotCache returns nil without an error on a miss
type SnapshotCache interface {
	Get(ctx context.Context, visitorID string) (*models.StoredSnapshot, error)
	Set(ctx context.Context, snapshot *models.StoredSnapshot) error
}

type Notifier interface {
	Notify(ctx context.Context, decision *models.Decision) error
}

// Service recognizes returning visitors by comparing their snapshots
type Service struct {
	engine    *similarity.Engine
	pool      *similarity.WorkerPool
	snapshots SnapshotStore
	decisions DecisionStore
	cache     SnapshotCache
	notifier  Notifier
	now       func() time.Time
}

// NewService creates a recognition service. cache and notifier are optional.
func NewService(
	engine *similarity.Engine,
	pool *similarity.WorkerPool,
	snapshots SnapshotStore,
	decisions DecisionStore,
	cache SnapshotCache,
	notifier Notifier,
) *Service {
	return &Service{
		engine:    engine,
		pool:      pool,
		snapshots: snapshots,
		decisions: decisions,
		cache:     cache,
		notifier:  notifier,
		now:       time.Now,
	}
}

// RecordSnapshot scores a new snapshot against the visitor's previous one
// and stores both the snapshot and the decision. The first snapshot of a
// visitor is stored without a score. A call that fails can be retried with
// the same snapshot.
func (s *Service) RecordSnapshot(ctx context.Context, snapshot *models.StoredSnapshot) (*models.RecognitionResult, error) {
	if snapshot == nil || strings.TrimSpace(snapshot.VisitorID) == "" {
		return nil, fmt.Errorf("%w: visitorId is required", ErrInvalidSnapshot)
	}
	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = s.now().UTC()
	}
	if snapshot.SessionCount <= 0 {
		// collectors that do not count sessions get one per stored snapshot
		count, err := s.snapshots.CountSnapshots(ctx, snapshot.VisitorID)
		if err != nil {
			return nil, err
		}
		snapshot.SessionCount = int(count) + 1
	}

	previous, err := s.latest(ctx, snapshot.VisitorID)
	if err != nil {
		return nil, err
	}

	if previous == nil {
		if err := s.storeSnapshot(ctx, snapshot); err != nil {
			return nil, err
		}
		log.Info().Str("visitorId", snapshot.VisitorID).Msg("First snapshot recorded for visitor")
		return &models.RecognitionResult{VisitorID: snapshot.VisitorID, FirstSeen: true}, nil
	}

	temporal := TemporalContextBetween(previous, snapshot)
	start := time.Now()
	score := s.engine.Calculate(&models.Comparison{
		Fingerprint1: &previous.Fingerprint,
		Fingerprint2: &snapshot.Fingerprint,
		Behavioral1:  previous.Behavioral,
		Behavioral2:  snapshot.Behavioral,
		Temporal:     &temporal,
	})
	metrics.RecordComparison(score, time.Since(start))

	decision := &models.Decision{
		VisitorID:          snapshot.VisitorID,
		SessionID:          snapshot.SessionID,
		PreviousCapturedAt: previous.CapturedAt,
		CapturedAt:         snapshot.CapturedAt,
		Temporal:           temporal,
		Score:              *score,
	}
	// The decision is written first: a failed attempt leaves the previous
	// snapshot as the visitor's latest, so a retry scores against it again.
	if err := s.decisions.InsertDecision(ctx, decision); err != nil {
		return nil, err
	}
	if err := s.storeSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	log.Info().
		Str("visitorId", snapshot.VisitorID).
		Float64("overall", score.Overall).
		Float64("confidence", score.Confidence).
		Str("recommendation", string(score.Recommendation)).
		Strs("risks", score.RiskIndicators).
		Msg("Snapshot scored against previous visit")

	if score.Recommendation != models.RecommendationAccept && s.notifier != nil {
		if err := s.notifier.Notify(ctx, decision); err != nil {
			log.Warn().Err(err).Str("visitorId", snapshot.VisitorID).Msg("Failed to forward decision")
		}
	}

	return &models.RecognitionResult{
		VisitorID:      snapshot.VisitorID,
		Recommendation: score.Recommendation,
		Score:          score,
	}, nil
}

// Decisions lists the stored decisions of a visitor, newest first
func (s *Service) Decisions(ctx context.Context, visitorID string, limit int) ([]*models.Decision, error) {
	return s.decisions.ListDecisions(ctx, visitorID, limit)
}

// Identify compares a probe snapshot with the latest snapshot of every
// candidate and ranks them by overall similarity, then confidence.
// Candidates without snapshots are skipped.
func (s *Service) Identify(ctx context.Context, probe *models.FingerprintSnapshot, behavioral *models.BehavioralSnapshot, candidateIDs []string) ([]models.CandidateMatch, error) {
	if len(candidateIDs) == 0 {
		return nil, ErrNoCandidates
	}
	if probe == nil {
		probe = &models.FingerprintSnapshot{}
	}

	now := s.now()
	comparisons := make(map[string]*models.Comparison, len(candidateIDs))
	for _, id := range candidateIDs {
		if _, seen := comparisons[id]; seen {
			continue
		}
		candidate, err := s.latest(ctx, id)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			log.Debug().Str("visitorId", id).Msg("Skipping candidate without snapshots")
			continue
		}
		comparisons[id] = &models.Comparison{
			Fingerprint1: &candidate.Fingerprint,
			Fingerprint2: probe,
			Behavioral1:  candidate.Behavioral,
			Behavioral2:  behavioral,
			Temporal: &models.TemporalContext{
				TimeDifference: now.Sub(candidate.CapturedAt).Milliseconds(),
			},
		}
	}

	start := time.Now()
	results, err := similarity.CompareAll(ctx, s.pool, s.engine, comparisons)
	if err != nil {
		return nil, fmt.Errorf("failed to compare candidates: %w", err)
	}
	elapsed := time.Since(start)

	matches := make([]models.CandidateMatch, 0, len(results))
	for id, score := range results {
		metrics.RecordComparison(score, elapsed/time.Duration(len(results)))
		matches = append(matches, models.CandidateMatch{
			VisitorID:      id,
			Overall:        score.Overall,
			Confidence:     score.Confidence,
			Recommendation: score.Recommendation,
			RiskIndicators: score.RiskIndicators,
		})
	}
	RankMatches(matches)

	return matches, nil
}

// RankMatches orders matches by overall similarity, then confidence, then
// visitor ID
func RankMatches(matches []models.CandidateMatch) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Overall != b.Overall {
			return a.Overall > b.Overall
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.VisitorID < b.VisitorID
	})
}

// latest returns the visitor's most recent snapshot, or nil if there is none
func (s *Service) latest(ctx context.Context, visitorID string) (*models.StoredSnapshot, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, visitorID)
		if err != nil {
			log.Warn().Err(err).Str("visitorId", visitorID).Msg("Snapshot cache read failed, falling back to MongoDB")
		} else if cached != nil {
			return cached, nil
		}
	}

	snapshot, err := s.snapshots.GetLatestSnapshot(ctx, visitorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.refreshCache(ctx, snapshot)
	return snapshot, nil
}

func (s *Service) storeSnapshot(ctx context.Context, snapshot *models.StoredSnapshot) error {
	if err := s.snapshots.InsertSnapshot(ctx, snapshot); err != nil {
		return err
	}
	s.refreshCache(ctx, snapshot)
	return nil
}

func (s *Service) refreshCache(ctx context.Context, snapshot *models.StoredSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, snapshot); err != nil {
		log.Warn().Err(err).Str("visitorId", snapshot.VisitorID).Msg("Failed to cache snapshot")
	}
}

// TemporalContextBetween derives the temporal context of two consecutive
// snapshots. The environment changed when the caller says so or the user
// agent or platform differ.
func TemporalContextBetween(previous, current *models.StoredSnapshot) models.TemporalContext {
	return models.TemporalContext{
		TimeDifference:    current.CapturedAt.Sub(previous.CapturedAt).Milliseconds(),
		SessionGap:        max(0, current.SessionCount-previous.SessionCount),
		EnvironmentChange: current.EnvironmentChange || differs(previous.UserAgent, current.UserAgent) || differs(previous.Platform, current.Platform),
	}
}

// differs ignores values missing on either side
func differs(a, b string) bool {
	return a != "" && b != "" && a != b
}
