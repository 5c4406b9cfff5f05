package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/config"
	"github.com/RishiKendai/fpsim/internal/infra/redis"
	"github.com/RishiKendai/fpsim/internal/metrics"
	"github.com/RishiKendai/fpsim/internal/models"
	"github.com/RishiKendai/fpsim/internal/recognition"
	"github.com/RishiKendai/fpsim/internal/repository"
	"github.com/RishiKendai/fpsim/internal/similarity"
)

// Recognizer is the recognition surface the handlers need
type Recognizer interface {
	RecordSnapshot(ctx context.Context, snapshot *models.StoredSnapshot) (*models.RecognitionResult, error)
	Decisions(ctx context.Context, visitorID string, limit int) ([]*models.Decision, error)
	Identify(ctx context.Context, probe *models.FingerprintSnapshot, behavioral *models.BehavioralSnapshot, candidateIDs []string) ([]models.CandidateMatch, error)
}

// JobTracker persists identify job progress
type JobTracker interface {
	UpdateStatus(ctx context.Context, jobID string, step models.Step) error
	Complete(ctx context.Context, jobID string, matches []models.CandidateMatch) error
	Status(ctx context.Context, jobID string) (*models.IdentifyStatusResponse, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	engine         *similarity.Engine
	recognizer     Recognizer
	jobs           JobTracker
	computeSem     chan struct{} // bounds concurrent identify jobs
	computeTimeout time.Duration
	maxCandidates  int
}

func NewHandler(cfg *config.Config, engine *similarity.Engine, recognizer Recognizer, jobs JobTracker) *Handler {
	return &Handler{
		engine:         engine,
		recognizer:     recognizer,
		jobs:           jobs,
		computeSem:     make(chan struct{}, cfg.MaxConcurrentCompute),
		computeTimeout: cfg.ComputationTimeout,
		maxCandidates:  cfg.MaxIdentifyCandidates,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Similarity scores two snapshots without touching storage
func (h *Handler) Similarity(c *gin.Context) {
	var req models.Comparison
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: describeValidation(err),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	start := time.Now()
	score := h.engine.Calculate(&req)
	metrics.RecordComparison(score, time.Since(start))

	c.JSON(http.StatusOK, score)
}

func (h *Handler) RecordSnapshot(c *gin.Context) {
	visitorID := c.Param("visitorId")
	if !validVisitorID(visitorID) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid visitor id",
			Code:  "INVALID_VISITOR_ID",
		})
		return
	}

	var req models.RecordSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: describeValidation(err),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	snapshot := &models.StoredSnapshot{
		VisitorID:         visitorID,
		SessionID:         req.SessionID,
		Fingerprint:       req.Fingerprint,
		Behavioral:        req.Behavioral,
		UserAgent:         req.UserAgent,
		Platform:          req.Platform,
		SessionCount:      req.SessionCount,
		EnvironmentChange: req.EnvironmentChange,
	}

	result, err := h.recognizer.RecordSnapshot(c.Request.Context(), snapshot)
	if errors.Is(err, recognition.ErrInvalidSnapshot) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SNAPSHOT",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("visitorId", visitorID).Msg("Failed to record snapshot")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to record snapshot",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	status := http.StatusOK
	if result.FirstSeen {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

func (h *Handler) ListDecisions(c *gin.Context) {
	visitorID := c.Param("visitorId")
	if !validVisitorID(visitorID) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid visitor id",
			Code:  "INVALID_VISITOR_ID",
		})
		return
	}

	limit := repository.DefaultDecisionsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  "INVALID_LIMIT",
			})
			return
		}
		limit = n
	}

	decisions, err := h.recognizer.Decisions(c.Request.Context(), visitorID, limit)
	if err != nil {
		log.Error().Err(err).Str("visitorId", visitorID).Msg("Failed to list decisions")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to list decisions",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if decisions == nil {
		decisions = []*models.Decision{}
	}

	c.JSON(http.StatusOK, gin.H{
		"visitorId": visitorID,
		"decisions": decisions,
	})
}

// Identify accepts a probe and ranks the candidates asynchronously
func (h *Handler) Identify(c *gin.Context) {
	var req models.IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: describeValidation(err),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if len(req.CandidateIDs) > h.maxCandidates {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Too many candidates, max " + strconv.Itoa(h.maxCandidates),
			Code:  "TOO_MANY_CANDIDATES",
		})
		return
	}

	ctx := c.Request.Context()
	select {
	case h.computeSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	jobID := uuid.New().String()
	if err := h.jobs.UpdateStatus(ctx, jobID, models.StepInitiated); err != nil {
		<-h.computeSem
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to register identify job")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to start identification",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusAccepted, models.IdentifyResponse{
		Step:  models.StepInitiated,
		JobID: jobID,
	})

	go h.processIdentify(jobID, req)
}

func (h *Handler) processIdentify(jobID string, req models.IdentifyRequest) {
	defer func() { <-h.computeSem }()

	ctx, cancel := context.WithTimeout(context.Background(), h.computeTimeout)
	defer cancel()

	logger := log.With().Str("jobId", jobID).Int("candidates", len(req.CandidateIDs)).Logger()

	for _, step := range []models.Step{models.StepStarted, models.StepComparing} {
		if err := h.jobs.UpdateStatus(ctx, jobID, step); err != nil {
			logger.Warn().Err(err).Str("step", string(step)).Msg("Failed to update job status")
		}
	}

	matches, err := h.recognizer.Identify(ctx, &req.Fingerprint, req.Behavioral, req.CandidateIDs)
	if errors.Is(err, recognition.ErrNoCandidates) {
		matches, err = []models.CandidateMatch{}, nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("Identify job failed")
		metrics.RecordIdentifyJob("failed", len(req.CandidateIDs))
		if err := h.jobs.UpdateStatus(context.Background(), jobID, models.StepFailed); err != nil {
			logger.Warn().Err(err).Msg("Failed to update failed status")
		}
		return
	}

	if err := h.jobs.Complete(ctx, jobID, matches); err != nil {
		logger.Error().Err(err).Msg("Failed to store identify result")
		metrics.RecordIdentifyJob("failed", len(req.CandidateIDs))
		return
	}

	metrics.RecordIdentifyJob("completed", len(req.CandidateIDs))
	logger.Info().Int("matches", len(matches)).Msg("Identify job completed")
}

func (h *Handler) IdentifyStatus(c *gin.Context) {
	jobID := c.Param("jobId")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid job id",
			Code:  "INVALID_JOB_ID",
		})
		return
	}

	status, err := h.jobs.Status(c.Request.Context(), jobID)
	if errors.Is(err, redis.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Identify job not found",
			Code:  "JOB_NOT_FOUND",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to read identify job")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to read job status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, status)
}
