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

// WaveRepository implements domain.WaveRepository using MongoDB
type WaveRepository struct {
	collection *mongo.Collection
}

// NewWaveRepository creates a new WaveRepository
func NewWaveRepository(db *mongo.Database) *WaveRepository {
	collection := db.Collection("waves")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "waveId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "orders.orderId", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &WaveRepository{collection: collection}
}

// Save persists a wave, enforcing the optimistic version check
func (r *WaveRepository) Save(ctx context.Context, wave *domain.Wave) error {
	expected := wave.Version
	wave.Version = expected + 1
	wave.UpdatedAt = time.Now().UTC()

	filter := bson.M{"waveId": wave.WaveID, "version": expected}
	update := bson.M{"$set": wave}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		wave.Version = expected
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConcurrentModification
		}
		return fmt.Errorf("failed to save wave: %w", err)
	}

	return nil
}

// FindByID retrieves a wave by its WaveID
func (r *WaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	var wave domain.Wave
	filter := bson.M{"waveId": waveID}

	err := r.collection.FindOne(ctx, filter).Decode(&wave)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &wave, nil
}

// FindByStatus retrieves waves by status
func (r *WaveRepository) FindByStatus(ctx context.Context, status domain.WaveStatus) ([]*domain.Wave, error) {
	filter := bson.M{"status": status}
	return r.findMany(ctx, filter)
}

// FindActive retrieves waves that are not completed or cancelled
func (r *WaveRepository) FindActive(ctx context.Context) ([]*domain.Wave, error) {
	filter := bson.M{"status": bson.M{"$in": []domain.WaveStatus{
		domain.WaveStatusPlanning,
		domain.WaveStatusAllocated,
		domain.WaveStatusReleased,
	}}}
	return r.findMany(ctx, filter)
}

func (r *WaveRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Wave, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query waves: %w", err)
	}
	defer cursor.Close(ctx)

	var waves []*domain.Wave
	if err := cursor.All(ctx, &waves); err != nil {
		return nil, fmt.Errorf("failed to decode waves: %w", err)
	}

	return waves, nil
}
