package repository

import (
	"context"
	"errors"

	mongoInfra "github.com/RishiKendai/fpsim/internal/infra/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document
var ErrNotFound = errors.New("not found")

type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(client *mongoInfra.Client) *MongoRepository {
	return &MongoRepository{
		db: client.Database,
	}
}

func (r *MongoRepository) InsertOne(ctx context.Context, collection string, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return r.db.Collection(collection).InsertOne(ctx, document, opts...)
}

func (r *MongoRepository) ReplaceOne(ctx context.Context, collection string, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(collection).ReplaceOne(ctx, filter, replacement, opts...)
}

func (r *MongoRepository) FindOne(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return r.db.Collection(collection).FindOne(ctx, filter, opts...)
}

func (r *MongoRepository) FindMany(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return r.db.Collection(collection).Find(ctx, filter, opts...)
}

func (r *MongoRepository) CountDocuments(ctx context.Context, collection string, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(collection).CountDocuments(ctx, filter, opts...)
}

// EnsureIndexes creates the visitor lookup indexes used by the repositories
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	for _, collection := range []string{snapshotsCollection, decisionsCollection} {
		_, err := r.db.Collection(collection).Indexes().CreateOne(ctx, visitorIndex())
		if err != nil {
			return err
		}
	}
	return nil
}
