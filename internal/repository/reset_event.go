package repository

import (
	"context"
	"fitcenter/internal/models"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ResetEventRepo — журнал событий сброса пароля.
type ResetEventRepo interface {
	Append(ctx context.Context, event *models.ResetEvent) error
	Latest(ctx context.Context, ut models.UserType, limit int64) ([]models.ResetEvent, error)
}

const resetEventCollection = "password_reset_events"

// Журнал держим 90 дней, дальше записи чистит TTL-индекс Mongo.
const resetEventRetention = 90 * 24 * time.Hour

type ResetEventRepository struct {
	db *mongo.Database
}

func NewResetEventRepository(ctx context.Context, db *mongo.Database) (*ResetEventRepository, error) {
	collection := db.Collection(resetEventCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_type", Value: 1}, {Key: "at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(resetEventRetention.Seconds())),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}

	return &ResetEventRepository{db: db}, nil
}

func (r *ResetEventRepository) Append(ctx context.Context, event *models.ResetEvent) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	result, err := r.db.Collection(resetEventCollection).InsertOne(ctx, event)
	if err != nil {
		return err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		event.ID = objectID
	}
	return nil
}

func (r *ResetEventRepository) Latest(ctx context.Context, ut models.UserType, limit int64) ([]models.ResetEvent, error) {
	filter := bson.M{}
	if ut != "" {
		filter["user_type"] = ut
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.db.Collection(resetEventCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]models.ResetEvent, 0, limit)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
