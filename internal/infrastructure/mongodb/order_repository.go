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

// OrderRepository implements domain.OrderRepository using MongoDB
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	collection := db.Collection("orders")

	// Create indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "orderNumber", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "customerId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "waveId", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "priority", Value: 1},
				{Key: "requestedDeliveryAt", Value: 1},
			},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &OrderRepository{collection: collection}
}

// Save persists an order, enforcing the optimistic version check. A stale
// writer either matches no document or trips the unique orderId index; both
// surface as ErrConcurrentModification.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	expected := order.Version
	order.Version = expected + 1
	order.UpdatedAt = time.Now().UTC()

	filter := bson.M{"orderId": order.OrderID, "version": expected}
	update := bson.M{"$set": order}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		order.Version = expected
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConcurrentModification
		}
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// FindByID retrieves an order by its OrderID
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	filter := bson.M{"orderId": orderID}

	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// FindByIDs retrieves the orders for the given IDs, preserving input order.
// Unknown IDs are absent from the result.
func (r *OrderRepository) FindByIDs(ctx context.Context, orderIDs []string) ([]*domain.Order, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{"orderId": bson.M{"$in": orderIDs}}
	found, err := r.findMany(ctx, filter, options.Find())
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Order, len(found))
	for _, o := range found {
		byID[o.OrderID] = o
	}

	orders := make([]*domain.Order, 0, len(found))
	for _, id := range orderIDs {
		if o, ok := byID[id]; ok {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// FindByOrderNumber retrieves an order by its caller-supplied number
func (r *OrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var order domain.Order
	filter := bson.M{"orderNumber": orderNumber}

	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// FindByStatus retrieves orders by status
func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	filter := bson.M{"status": status}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	return r.findMany(ctx, filter, opts)
}

// FindWaveCandidates retrieves unwaved orders in an allocatable status
// matching the criteria, most urgent first
func (r *OrderRepository) FindWaveCandidates(ctx context.Context, criteria domain.WaveCriteria) ([]*domain.Order, error) {
	filter := bson.M{
		"status": bson.M{"$in": []domain.OrderStatus{domain.StatusDraft, domain.StatusVerified}},
		"$or": []bson.M{
			{"waveId": bson.M{"$exists": false}},
			{"waveId": ""},
		},
	}
	if criteria.CustomerID != "" {
		filter["customerId"] = criteria.CustomerID
	}
	if criteria.OrderType != "" {
		filter["orderType"] = criteria.OrderType
	}
	if criteria.MaxPriority > 0 {
		filter["priority"] = bson.M{"$lte": criteria.MaxPriority}
	}
	if criteria.DeliveryDateFrom != nil || criteria.DeliveryDateTo != nil {
		dateFilter := bson.M{}
		if criteria.DeliveryDateFrom != nil {
			dateFilter["$gte"] = *criteria.DeliveryDateFrom
		}
		if criteria.DeliveryDateTo != nil {
			dateFilter["$lte"] = *criteria.DeliveryDateTo
		}
		filter["requestedDeliveryAt"] = dateFilter
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: 1},
		{Key: "requestedDeliveryAt", Value: 1},
		{Key: "createdAt", Value: 1},
	})

	return r.findMany(ctx, filter, opts)
}

func (r *OrderRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}
