package domain

import "time"

// DomainEvent is the interface for all domain events. AggregateID keys the
// event to its aggregate so a broker can keep per-aggregate ordering.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// OrderCreatedEvent is published when a new order is created
type OrderCreatedEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId"`
	OrderType   string    `json:"orderType"`
	LineCount   int       `json:"lineCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e *OrderCreatedEvent) EventType() string     { return "wms.order.created" }
func (e *OrderCreatedEvent) AggregateID() string   { return e.OrderID }
func (e *OrderCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// OrderVerifiedEvent is published when an order passes verification
type OrderVerifiedEvent struct {
	OrderID    string    `json:"orderId"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

func (e *OrderVerifiedEvent) EventType() string     { return "wms.order.verified" }
func (e *OrderVerifiedEvent) AggregateID() string   { return e.OrderID }
func (e *OrderVerifiedEvent) OccurredAt() time.Time { return e.VerifiedAt }

// OrderAllocatedEvent is published when an allocation attempt is applied.
// A shortage is a normal outcome and is flagged, not treated as a failure.
type OrderAllocatedEvent struct {
	OrderID     string    `json:"orderId"`
	StrategyID  string    `json:"strategyId"`
	HasShortage bool      `json:"hasShortage"`
	AllocatedAt time.Time `json:"allocatedAt"`
}

func (e *OrderAllocatedEvent) EventType() string     { return "wms.order.allocated" }
func (e *OrderAllocatedEvent) AggregateID() string   { return e.OrderID }
func (e *OrderAllocatedEvent) OccurredAt() time.Time { return e.AllocatedAt }

// OrderReleasedEvent is published when an order is released to picking
type OrderReleasedEvent struct {
	OrderID           string    `json:"orderId"`
	ShortagesAccepted bool      `json:"shortagesAccepted"`
	ReleasedAt        time.Time `json:"releasedAt"`
}

func (e *OrderReleasedEvent) EventType() string     { return "wms.order.released" }
func (e *OrderReleasedEvent) AggregateID() string   { return e.OrderID }
func (e *OrderReleasedEvent) OccurredAt() time.Time { return e.ReleasedAt }

// OrderShippedEvent is published when an order reaches its terminal state
type OrderShippedEvent struct {
	OrderID   string    `json:"orderId"`
	ShippedAt time.Time `json:"shippedAt"`
}

func (e *OrderShippedEvent) EventType() string     { return "wms.order.shipped" }
func (e *OrderShippedEvent) AggregateID() string   { return e.OrderID }
func (e *OrderShippedEvent) OccurredAt() time.Time { return e.ShippedAt }

// OrderCancelledEvent is published when an order is cancelled
type OrderCancelledEvent struct {
	OrderID     string    `json:"orderId"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *OrderCancelledEvent) EventType() string     { return "wms.order.cancelled" }
func (e *OrderCancelledEvent) AggregateID() string   { return e.OrderID }
func (e *OrderCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// OrderAssignedToWaveEvent is published when an order joins a wave
type OrderAssignedToWaveEvent struct {
	OrderID    string    `json:"orderId"`
	WaveID     string    `json:"waveId"`
	AssignedAt time.Time `json:"assignedAt"`
}

func (e *OrderAssignedToWaveEvent) EventType() string     { return "wms.order.wave-assigned" }
func (e *OrderAssignedToWaveEvent) AggregateID() string   { return e.OrderID }
func (e *OrderAssignedToWaveEvent) OccurredAt() time.Time { return e.AssignedAt }

// WaveCreatedEvent is published when a wave is committed
type WaveCreatedEvent struct {
	WaveID     string    `json:"waveId"`
	WaveNumber string    `json:"waveNumber"`
	WaveType   string    `json:"waveType"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *WaveCreatedEvent) EventType() string     { return "wms.wave.created" }
func (e *WaveCreatedEvent) AggregateID() string   { return e.WaveID }
func (e *WaveCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// OrderAddedToWaveEvent is published when an order is added to a wave
type OrderAddedToWaveEvent struct {
	WaveID  string    `json:"waveId"`
	OrderID string    `json:"orderId"`
	AddedAt time.Time `json:"addedAt"`
}

func (e *OrderAddedToWaveEvent) EventType() string     { return "wms.wave.order-added" }
func (e *OrderAddedToWaveEvent) AggregateID() string   { return e.WaveID }
func (e *OrderAddedToWaveEvent) OccurredAt() time.Time { return e.AddedAt }

// WaveAllocatedEvent is published when every member order has been allocated
type WaveAllocatedEvent struct {
	WaveID      string    `json:"waveId"`
	OrderCount  int       `json:"orderCount"`
	AllocatedAt time.Time `json:"allocatedAt"`
}

func (e *WaveAllocatedEvent) EventType() string     { return "wms.wave.allocated" }
func (e *WaveAllocatedEvent) AggregateID() string   { return e.WaveID }
func (e *WaveAllocatedEvent) OccurredAt() time.Time { return e.AllocatedAt }

// WaveReleasedEvent is published when a wave is released to picking
type WaveReleasedEvent struct {
	WaveID     string    `json:"waveId"`
	OrderIDs   []string  `json:"orderIds"`
	ReleasedAt time.Time `json:"releasedAt"`
}

func (e *WaveReleasedEvent) EventType() string     { return "wms.wave.released" }
func (e *WaveReleasedEvent) AggregateID() string   { return e.WaveID }
func (e *WaveReleasedEvent) OccurredAt() time.Time { return e.ReleasedAt }

// WaveCompletedEvent is published when a wave is closed
type WaveCompletedEvent struct {
	WaveID      string    `json:"waveId"`
	OrderCount  int       `json:"orderCount"`
	CompletedAt time.Time `json:"completedAt"`
}

func (e *WaveCompletedEvent) EventType() string     { return "wms.wave.completed" }
func (e *WaveCompletedEvent) AggregateID() string   { return e.WaveID }
func (e *WaveCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// WaveCancelledEvent is published when a wave is cancelled
type WaveCancelledEvent struct {
	WaveID      string    `json:"waveId"`
	Reason      string    `json:"reason"`
	OrderIDs    []string  `json:"orderIds"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *WaveCancelledEvent) EventType() string     { return "wms.wave.cancelled" }
func (e *WaveCancelledEvent) AggregateID() string   { return e.WaveID }
func (e *WaveCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }
