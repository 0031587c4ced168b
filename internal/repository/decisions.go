package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"senti_ttt/internal/domain/game"
)

const decisionsCollection = "decisions"

type DecisionRepository struct {
	collection *mongo.Collection
	log        *zap.SugaredLogger
}

func NewDecisionRepository(db *mongo.Database, log *zap.SugaredLogger) *DecisionRepository {
	return &DecisionRepository{
		collection: db.Collection(decisionsCollection),
		log:        log,
	}
}

func (d *DecisionRepository) SaveDecision(ctx context.Context, record game.DecisionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := d.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert decision %s: %w", record.ID, err)
	}
	return nil
}

// LatestDecisions returns up to limit records, newest first.
func (d *DecisionRepository) LatestDecisions(ctx context.Context, limit int) ([]game.DecisionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := d.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find decisions: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]game.DecisionRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode decisions: %w", err)
	}
	return records, nil
}
