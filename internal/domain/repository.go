package domain

import (
	"context"
	"errors"
)

// ErrConcurrentModification signals that a persisted aggregate changed
// between the precondition check and the write. Callers must re-fetch and
// decide; nothing is retried automatically.
var ErrConcurrentModification = errors.New("aggregate was modified concurrently")

// OrderRepository defines the interface for order persistence. Save performs
// an optimistic version check so concurrent writers against the same order
// fail cleanly instead of silently overwriting.
type OrderRepository interface {
	// Save persists an order (create or update), enforcing the version check
	Save(ctx context.Context, order *Order) error

	// FindByID retrieves an order by its ID, nil if not found
	FindByID(ctx context.Context, orderID string) (*Order, error)

	// FindByIDs retrieves the orders for the given IDs, preserving input order;
	// unknown IDs are simply absent from the result
	FindByIDs(ctx context.Context, orderIDs []string) ([]*Order, error)

	// FindByOrderNumber retrieves an order by its caller-supplied number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByStatus retrieves orders in a given status
	FindByStatus(ctx context.Context, status OrderStatus) ([]*Order, error)

	// FindWaveCandidates retrieves unwaved orders in an allocatable status
	// matching the criteria
	FindWaveCandidates(ctx context.Context, criteria WaveCriteria) ([]*Order, error)
}

// WaveRepository defines the interface for wave persistence
type WaveRepository interface {
	Save(ctx context.Context, wave *Wave) error
	FindByID(ctx context.Context, waveID string) (*Wave, error)
	FindByStatus(ctx context.Context, status WaveStatus) ([]*Wave, error)
	FindActive(ctx context.Context) ([]*Wave, error)
}

// StrategyRepository provides read access to allocation strategies.
// Strategies are read-only inputs to this service.
type StrategyRepository interface {
	FindActive(ctx context.Context) ([]*AllocationStrategy, error)
	FindByID(ctx context.Context, strategyID string) (*AllocationStrategy, error)
}

// PickTaskRepository stores pick tasks produced by wave allocation
type PickTaskRepository interface {
	SaveAll(ctx context.Context, tasks []PickTask) error
	FindByWaveID(ctx context.Context, waveID string) ([]PickTask, error)
}

// AllocationResult is what the external allocation engine returns for one
// order: updated per-line allocated quantities and, for wave allocation, the
// pick tasks it generated.
type AllocationResult struct {
	Lines     []LineAllocation `json:"lines"`
	PickTasks []PickTask       `json:"pickTasks,omitempty"`
}

// AllocationEngine is the external command capability that performs the
// actual inventory allocation. This service never implements the allocation
// math itself.
type AllocationEngine interface {
	Allocate(ctx context.Context, order *Order, strategy *AllocationStrategy) (*AllocationResult, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
