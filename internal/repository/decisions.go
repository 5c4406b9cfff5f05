package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RishiKendai/fpsim/internal/models"
)

const (
	decisionsCollection = "similarity_decisions"

	DefaultDecisionsLimit = 20
	MaxDecisionsLimit     = 100
)

type DecisionsRepository struct {
	mongoRepo *MongoRepository
}

func NewDecisionsRepository(mongoRepo *MongoRepository) *DecisionsRepository {
	return &DecisionsRepository{
		mongoRepo: mongoRepo,
	}
}

// decisionKey identifies the decision for one recorded snapshot
func decisionKey(decision *models.Decision) bson.M {
	return bson.M{"visitorId": decision.VisitorID, "capturedAt": decision.CapturedAt}
}

// InsertDecision stores a decision, replacing any earlier decision for the
// same visitor and capture time so a retried write leaves one document
func (r *DecisionsRepository) InsertDecision(ctx context.Context, decision *models.Decision) error {
	decision.CreatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	res, err := r.mongoRepo.ReplaceOne(ctx, decisionsCollection, decisionKey(decision), decision, opts)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		decision.ID = id
	}
	return nil
}

// ListDecisions returns a visitor's decisions, newest first
func (r *DecisionsRepository) ListDecisions(ctx context.Context, visitorID string, limit int) ([]*models.Decision, error) {
	filter := bson.M{"visitorId": visitorID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(ClampLimit(limit)))

	cursor, err := r.mongoRepo.FindMany(ctx, decisionsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find decisions: %w", err)
	}
	defer cursor.Close(ctx)

	decisions := make([]*models.Decision, 0)
	if err := cursor.All(ctx, &decisions); err != nil {
		return nil, fmt.Errorf("failed to decode decisions: %w", err)
	}

	return decisions, nil
}

// ClampLimit maps a requested page size onto [1, MaxDecisionsLimit]; zero or
// negative values select the default
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultDecisionsLimit
	}
	return min(limit, MaxDecisionsLimit)
}
