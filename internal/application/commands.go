package application

import (
	"time"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// CreateOrderCommand represents the command to create a new order
type CreateOrderCommand struct {
	OrderNumber         string
	CustomerID          string
	OrderType           string
	Priority            int
	Lines               []CreateOrderLine
	RequestedDeliveryAt *time.Time
	Notes               string
}

// CreateOrderLine is one requested line on a new order
type CreateOrderLine struct {
	SKU        string
	UOM        string
	QtyOrdered float64
}

// AllocateOrderCommand represents the command to allocate one order.
// StrategyID is optional; when empty the strategy is resolved.
type AllocateOrderCommand struct {
	OrderID    string
	StrategyID string
}

// OrderTransitionCommand is shared by verify/accept-shortages/release
type OrderTransitionCommand struct {
	OrderID string
}

// CancelOrderCommand represents the command to cancel an order
type CancelOrderCommand struct {
	OrderID string
	Reason  string
}

// RecordLineProgressCommand updates pipeline quantities on one line
type RecordLineProgressCommand struct {
	OrderID    string
	LineNo     int
	QtyPicked  float64
	QtyPacked  float64
	QtyShipped float64
}

// BulkOperationCommand applies one operation to a set of orders
type BulkOperationCommand struct {
	OrderIDs []string
}

// SimulateWaveCommand previews the order set a wave commit would capture
type SimulateWaveCommand struct {
	WaveType string
	Criteria domain.WaveCriteria
}

// CommitWaveCommand creates a wave over an explicit order-id list. The id
// list from the preceding simulate step is authoritative; the criteria are
// stored for audit only.
type CommitWaveCommand struct {
	WaveName   string // optional; wave number generated when empty
	WaveType   string
	StrategyID string // required for custom waves, otherwise resolved from type
	Criteria   domain.WaveCriteria
	OrderIDs   []string
}

// WaveTransitionCommand is shared by allocate/release/complete on a wave
type WaveTransitionCommand struct {
	WaveID string
}

// CancelWaveCommand cancels a wave and unassigns its member orders
type CancelWaveCommand struct {
	WaveID string
	Reason string
}

// AddOrdersToWaveCommand adds orders to a planning wave, best-effort
type AddOrdersToWaveCommand struct {
	WaveID   string
	OrderIDs []string
}

// GetOrderQuery retrieves one order
type GetOrderQuery struct {
	OrderID string
}

// ListOrdersByStatusQuery retrieves orders in a given status
type ListOrdersByStatusQuery struct {
	Status string
}

// GetWaveQuery retrieves one wave with its pick tasks
type GetWaveQuery struct {
	WaveID string
}

// ListWavesQuery retrieves waves, optionally filtered by status
type ListWavesQuery struct {
	Status string
}
