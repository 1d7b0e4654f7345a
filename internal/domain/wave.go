package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for the Wave aggregate
var (
	ErrWaveEmpty            = errors.New("wave must contain at least one order")
	ErrInvalidWaveType      = errors.New("invalid wave type")
	ErrWaveNotPlanning      = errors.New("wave is no longer in planning")
	ErrWaveNotAllocated     = errors.New("wave has not been allocated")
	ErrWaveNotReleased      = errors.New("wave has not been released")
	ErrWaveClosed           = errors.New("wave is already completed")
	ErrOrderAlreadyInWave   = errors.New("order is already in this wave")
	ErrCustomNeedsNoDefault = errors.New("custom wave type carries no default strategy")
)

// WaveType describes the batching profile of a wave
type WaveType string

const (
	WaveTypeEcommerceDaily   WaveType = "ecommerce_daily"
	WaveTypeEcommerceExpress WaveType = "ecommerce_express"
	WaveTypeB2BUrgent        WaveType = "b2b_urgent"
	WaveTypeWholesale        WaveType = "wholesale"
	WaveTypeCustom           WaveType = "custom"
)

// IsValid checks if the wave type is valid
func (t WaveType) IsValid() bool {
	switch t {
	case WaveTypeEcommerceDaily, WaveTypeEcommerceExpress, WaveTypeB2BUrgent,
		WaveTypeWholesale, WaveTypeCustom:
		return true
	default:
		return false
	}
}

// DefaultPickingPolicy returns the picking policy implied by the wave type.
// Custom waves have no implicit default; the caller must resolve a strategy
// explicitly.
func (t WaveType) DefaultPickingPolicy() (string, error) {
	switch t {
	case WaveTypeEcommerceDaily:
		return "batch_pick", nil
	case WaveTypeEcommerceExpress:
		return "express_pick", nil
	case WaveTypeB2BUrgent:
		return "discrete_pick", nil
	case WaveTypeWholesale:
		return "pallet_pick", nil
	case WaveTypeCustom:
		return "", ErrCustomNeedsNoDefault
	default:
		return "", ErrInvalidWaveType
	}
}

// WaveStatus represents the wave lifecycle status
type WaveStatus string

const (
	WaveStatusPlanning  WaveStatus = "planning"
	WaveStatusAllocated WaveStatus = "allocated"
	WaveStatusReleased  WaveStatus = "released"
	WaveStatusCompleted WaveStatus = "completed"
	WaveStatusCancelled WaveStatus = "cancelled"
)

// WaveCriteria is the filter used to select member orders. Membership is
// fixed at commit time; the criteria are kept for audit only.
type WaveCriteria struct {
	DeliveryDateFrom *time.Time `bson:"deliveryDateFrom,omitempty" json:"deliveryDateFrom,omitempty"`
	DeliveryDateTo   *time.Time `bson:"deliveryDateTo,omitempty" json:"deliveryDateTo,omitempty"`
	CustomerID       string     `bson:"customerId,omitempty" json:"customerId,omitempty"`
	OrderType        OrderType  `bson:"orderType,omitempty" json:"orderType,omitempty"`
	MaxPriority      int        `bson:"maxPriority,omitempty" json:"maxPriority,omitempty"`
}

// MatchesOrder reports whether an order satisfies the criteria. Eligibility
// (unwaved, allocatable status) is checked separately by the caller.
func (c WaveCriteria) MatchesOrder(o *Order) bool {
	if c.CustomerID != "" && o.CustomerID != c.CustomerID {
		return false
	}
	if c.OrderType != "" && o.OrderType != c.OrderType {
		return false
	}
	if c.MaxPriority > 0 && o.Priority > c.MaxPriority {
		return false
	}
	if c.DeliveryDateFrom != nil {
		if o.RequestedDeliveryAt == nil || o.RequestedDeliveryAt.Before(*c.DeliveryDateFrom) {
			return false
		}
	}
	if c.DeliveryDateTo != nil {
		if o.RequestedDeliveryAt == nil || o.RequestedDeliveryAt.After(*c.DeliveryDateTo) {
			return false
		}
	}
	return true
}

// WaveOrder is the summary of a member order recorded on the wave
type WaveOrder struct {
	OrderID             string     `bson:"orderId" json:"orderId"`
	OrderNumber         string     `bson:"orderNumber" json:"orderNumber"`
	CustomerID          string     `bson:"customerId" json:"customerId"`
	OrderType           OrderType  `bson:"orderType" json:"orderType"`
	Priority            int        `bson:"priority" json:"priority"`
	LineCount           int        `bson:"lineCount" json:"lineCount"`
	TotalQty            float64    `bson:"totalQty" json:"totalQty"`
	RequestedDeliveryAt *time.Time `bson:"requestedDeliveryAt,omitempty" json:"requestedDeliveryAt,omitempty"`
	AddedAt             time.Time  `bson:"addedAt" json:"addedAt"`
}

// Wave is the aggregate root for a batch of orders released together
type Wave struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WaveID       string             `bson:"waveId" json:"waveId"`
	WaveNumber   string             `bson:"waveNumber" json:"waveNumber"`
	WaveType     WaveType           `bson:"waveType" json:"waveType"`
	Status       WaveStatus         `bson:"status" json:"status"`
	StrategyID   string             `bson:"strategyId,omitempty" json:"strategyId,omitempty"`
	StrategyName string             `bson:"strategyName,omitempty" json:"strategyName,omitempty"`
	Criteria     WaveCriteria       `bson:"criteria" json:"criteria"`
	Orders       []WaveOrder        `bson:"orders" json:"orders"`
	Version      int64              `bson:"version" json:"version"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	AllocatedAt  *time.Time         `bson:"allocatedAt,omitempty" json:"allocatedAt,omitempty"`
	ReleasedAt   *time.Time         `bson:"releasedAt,omitempty" json:"releasedAt,omitempty"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewWave creates a new Wave aggregate in planning status
func NewWave(waveID, waveNumber string, waveType WaveType, criteria WaveCriteria) (*Wave, error) {
	if !waveType.IsValid() {
		return nil, ErrInvalidWaveType
	}

	now := time.Now().UTC()
	wave := &Wave{
		ID:           primitive.NewObjectID(),
		WaveID:       waveID,
		WaveNumber:   waveNumber,
		WaveType:     waveType,
		Status:       WaveStatusPlanning,
		Criteria:     criteria,
		Orders:       make([]WaveOrder, 0),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
		domainEvents: make([]DomainEvent, 0),
	}

	wave.addDomainEvent(&WaveCreatedEvent{
		WaveID:     waveID,
		WaveNumber: waveNumber,
		WaveType:   string(waveType),
		CreatedAt:  now,
	})

	return wave, nil
}

// AddOrder records a member order. Orders may only join while the wave is
// still in planning.
func (w *Wave) AddOrder(order WaveOrder) error {
	if w.Status != WaveStatusPlanning {
		return ErrWaveNotPlanning
	}
	for _, o := range w.Orders {
		if o.OrderID == order.OrderID {
			return ErrOrderAlreadyInWave
		}
	}

	order.AddedAt = time.Now().UTC()
	w.Orders = append(w.Orders, order)
	w.touch()

	w.addDomainEvent(&OrderAddedToWaveEvent{
		WaveID:  w.WaveID,
		OrderID: order.OrderID,
		AddedAt: order.AddedAt,
	})

	return nil
}

// MarkAllocated transitions the wave to allocated once every member order has
// been run through the allocation engine
func (w *Wave) MarkAllocated() error {
	if w.Status != WaveStatusPlanning {
		return ErrWaveNotPlanning
	}
	if len(w.Orders) == 0 {
		return ErrWaveEmpty
	}

	now := time.Now().UTC()
	w.Status = WaveStatusAllocated
	w.AllocatedAt = &now
	w.touch()

	w.addDomainEvent(&WaveAllocatedEvent{
		WaveID:      w.WaveID,
		OrderCount:  len(w.Orders),
		AllocatedAt: now,
	})

	return nil
}

// Release transitions the wave to released-to-picking
func (w *Wave) Release() error {
	if w.Status != WaveStatusAllocated {
		return ErrWaveNotAllocated
	}

	now := time.Now().UTC()
	w.Status = WaveStatusReleased
	w.ReleasedAt = &now
	w.touch()

	orderIDs := make([]string, len(w.Orders))
	for i, o := range w.Orders {
		orderIDs[i] = o.OrderID
	}
	w.addDomainEvent(&WaveReleasedEvent{
		WaveID:     w.WaveID,
		OrderIDs:   orderIDs,
		ReleasedAt: now,
	})

	return nil
}

// Complete closes the wave. Completed waves are never reopened.
func (w *Wave) Complete() error {
	if w.Status == WaveStatusCompleted {
		return ErrWaveClosed
	}
	if w.Status != WaveStatusReleased {
		return ErrWaveNotReleased
	}

	now := time.Now().UTC()
	w.Status = WaveStatusCompleted
	w.CompletedAt = &now
	w.touch()

	w.addDomainEvent(&WaveCompletedEvent{
		WaveID:      w.WaveID,
		OrderCount:  len(w.Orders),
		CompletedAt: now,
	})

	return nil
}

// Cancel cancels a wave that has not completed
func (w *Wave) Cancel(reason string) error {
	if w.Status == WaveStatusCompleted {
		return ErrWaveClosed
	}
	if w.Status == WaveStatusCancelled {
		return nil
	}

	w.Status = WaveStatusCancelled
	w.touch()

	orderIDs := make([]string, len(w.Orders))
	for i, o := range w.Orders {
		orderIDs[i] = o.OrderID
	}
	w.addDomainEvent(&WaveCancelledEvent{
		WaveID:      w.WaveID,
		Reason:      reason,
		OrderIDs:    orderIDs,
		CancelledAt: w.UpdatedAt,
	})

	return nil
}

// OrderCount returns the number of member orders
func (w *Wave) OrderCount() int {
	return len(w.Orders)
}

// TotalLines returns the total line count across member orders
func (w *Wave) TotalLines() int {
	total := 0
	for _, o := range w.Orders {
		total += o.LineCount
	}
	return total
}

// TotalQty returns the total ordered units across member orders
func (w *Wave) TotalQty() float64 {
	total := 0.0
	for _, o := range w.Orders {
		total += o.TotalQty
	}
	return total
}

// HasOrder reports whether the order is a member of the wave
func (w *Wave) HasOrder(orderID string) bool {
	for _, o := range w.Orders {
		if o.OrderID == orderID {
			return true
		}
	}
	return false
}

func (w *Wave) touch() {
	w.UpdatedAt = time.Now().UTC()
}

func (w *Wave) addDomainEvent(event DomainEvent) {
	w.domainEvents = append(w.domainEvents, event)
}

// DomainEvents returns all pending domain events
func (w *Wave) DomainEvents() []DomainEvent {
	return w.domainEvents
}

// ClearDomainEvents clears all pending domain events
func (w *Wave) ClearDomainEvents() {
	w.domainEvents = make([]DomainEvent, 0)
}
