package repository

import (
	"context"
	"errors"
	"fmt"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMessageLogRepository implements the MessageLogRepository interface
type MongoMessageLogRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageLogRepository creates a new MongoDB message log repository
func NewMongoMessageLogRepository(ctx context.Context, db *mongo.Database) (repository.MessageLogRepository, error) {
	collection := db.Collection("messageLogs")

	messageIDIndex := mongo.IndexModel{
		Keys:    bson.M{"messageId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on runId for the per-run status breakdown
	runIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "runId", Value: 1},
			{Key: "processStatus", Value: 1},
		},
	}

	// Index on receivedAt for sorting and filtering
	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		messageIDIndex,
		runIndex,
		receivedAtIndex,
	}); err != nil {
		return nil, fmt.Errorf("failed to create message log indexes: %w", err)
	}

	return &MongoMessageLogRepository{
		collection: collection,
	}, nil
}

// Save upserts the log entry of a message; the latest run wins
func (r *MongoMessageLogRepository) Save(ctx context.Context, log *entity.MessageLog) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"messageId": log.MessageID},
		log,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save message log: %w", err)
	}
	return nil
}

// FindByMessageID finds the log entry of a message
func (r *MongoMessageLogRepository) FindByMessageID(ctx context.Context, messageID string) (*entity.MessageLog, error) {
	var log entity.MessageLog
	err := r.collection.FindOne(ctx, bson.M{"messageId": messageID}).Decode(&log)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// CountByStatus counts the messages of a run per process status
func (r *MongoMessageLogRepository) CountByStatus(ctx context.Context, runID string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"runId": runID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$processStatus",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count message statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
