package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RishiKendai/fpsim/internal/models"
)

const snapshotsCollection = "fingerprint_snapshots"

// visitorIndex orders a visitor's documents newest first
func visitorIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "visitorId", Value: 1}, {Key: "capturedAt", Value: -1}},
	}
}

type SnapshotsRepository struct {
	mongoRepo *MongoRepository
}

func NewSnapshotsRepository(mongoRepo *MongoRepository) *SnapshotsRepository {
	return &SnapshotsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *SnapshotsRepository) InsertSnapshot(ctx context.Context, snapshot *models.StoredSnapshot) error {
	res, err := r.mongoRepo.InsertOne(ctx, snapshotsCollection, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		snapshot.ID = id
	}
	return nil
}

// GetLatestSnapshot returns the most recent snapshot of a visitor, or
// ErrNotFound
func (r *SnapshotsRepository) GetLatestSnapshot(ctx context.Context, visitorID string) (*models.StoredSnapshot, error) {
	filter := bson.M{"visitorId": visitorID}
	opts := options.FindOne().SetSort(bson.D{{Key: "capturedAt", Value: -1}})

	var snapshot models.StoredSnapshot
	err := r.mongoRepo.FindOne(ctx, snapshotsCollection, filter, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot: %w", err)
	}

	return &snapshot, nil
}

func (r *SnapshotsRepository) CountSnapshots(ctx context.Context, visitorID string) (int64, error) {
	filter := bson.M{"visitorId": visitorID}

	count, err := r.mongoRepo.CountDocuments(ctx, snapshotsCollection, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	return count, nil
}
