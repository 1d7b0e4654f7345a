package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// PickTaskRepository implements domain.PickTaskRepository using MongoDB
type PickTaskRepository struct {
	collection *mongo.Collection
}

// NewPickTaskRepository creates a new PickTaskRepository
func NewPickTaskRepository(db *mongo.Database) *PickTaskRepository {
	collection := db.Collection("pick_tasks")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "taskId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "waveId", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "orderId", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &PickTaskRepository{collection: collection}
}

// SaveAll upserts the given pick tasks keyed by taskId
func (r *PickTaskRepository) SaveAll(ctx context.Context, tasks []domain.PickTask) error {
	if len(tasks) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, len(tasks))
	for i := range tasks {
		tasks[i].UpdatedAt = now
		if tasks[i].CreatedAt.IsZero() {
			tasks[i].CreatedAt = now
		}
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"taskId": tasks[i].TaskID}).
			SetUpdate(bson.M{"$set": tasks[i]}).
			SetUpsert(true)
	}

	if _, err := r.collection.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("failed to save pick tasks: %w", err)
	}
	return nil
}

// FindByWaveID retrieves the pick tasks generated for a wave
func (r *PickTaskRepository) FindByWaveID(ctx context.Context, waveID string) ([]domain.PickTask, error) {
	filter := bson.M{"waveId": waveID}
	opts := options.Find().SetSort(bson.D{
		{Key: "locationId", Value: 1},
		{Key: "taskId", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pick tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []domain.PickTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode pick tasks: %w", err)
	}

	return tasks, nil
}
