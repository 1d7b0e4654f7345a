package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// StrategyRepository implements domain.StrategyRepository using MongoDB.
// Strategies are administered elsewhere; this service only reads them.
type StrategyRepository struct {
	collection *mongo.Collection
}

// NewStrategyRepository creates a new StrategyRepository
func NewStrategyRepository(db *mongo.Database) *StrategyRepository {
	collection := db.Collection("allocation_strategies")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "strategyId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "active", Value: 1},
				{Key: "priority", Value: 1},
			},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &StrategyRepository{collection: collection}
}

// FindActive retrieves all active strategies
func (r *StrategyRepository) FindActive(ctx context.Context) ([]*domain.AllocationStrategy, error) {
	filter := bson.M{"active": true}
	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: 1},
		{Key: "strategyId", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer cursor.Close(ctx)

	var strategies []*domain.AllocationStrategy
	if err := cursor.All(ctx, &strategies); err != nil {
		return nil, fmt.Errorf("failed to decode strategies: %w", err)
	}

	return strategies, nil
}

// FindByID retrieves a strategy by its StrategyID
func (r *StrategyRepository) FindByID(ctx context.Context, strategyID string) (*domain.AllocationStrategy, error) {
	var strategy domain.AllocationStrategy
	filter := bson.M{"strategyId": strategyID}

	err := r.collection.FindOne(ctx, filter).Decode(&strategy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &strategy, nil
}
