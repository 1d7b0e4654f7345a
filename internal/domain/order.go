package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for the Order aggregate
var (
	ErrNoLines               = errors.New("order must have at least one line")
	ErrInvalidOrderType      = errors.New("invalid order type")
	ErrInvalidQuantity       = errors.New("line quantity must be positive")
	ErrInvalidPriority       = errors.New("order priority must be positive")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOrderCancelled        = errors.New("order has been cancelled")
	ErrOrderShipped          = errors.New("order has already shipped")
	ErrOrderAlreadyWaved     = errors.New("order already assigned to a wave")
	ErrOrderNotWaved         = errors.New("order is not assigned to a wave")
	ErrShortageBlocksRelease = errors.New("order has unallocated shortage, accept shortages or re-allocate first")
	ErrNoShortageToAccept    = errors.New("order has no shortage to accept")
	ErrOverAllocation        = errors.New("allocated quantity exceeds ordered quantity")
	ErrLineNotFound          = errors.New("line not found in order")
	ErrQuantityRegression    = errors.New("pipeline quantities cannot decrease")
)

// OrderType classifies the fulfillment request
type OrderType string

const (
	OrderTypeSales    OrderType = "sales"
	OrderTypeTransfer OrderType = "transfer"
	OrderTypeReturn   OrderType = "return"
	OrderTypeSample   OrderType = "sample"
)

// IsValid checks if the order type is valid
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeSales, OrderTypeTransfer, OrderTypeReturn, OrderTypeSample:
		return true
	default:
		return false
	}
}

// OrderStatus represents the order lifecycle status
type OrderStatus string

const (
	StatusDraft     OrderStatus = "draft"
	StatusVerified  OrderStatus = "verified"
	StatusPlanned   OrderStatus = "planned"
	StatusReleased  OrderStatus = "released"
	StatusPicking   OrderStatus = "picking"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusVerified, StatusPlanned, StatusReleased, StatusPicking, StatusShipped, StatusCancelled:
		return true
	default:
		return false
	}
}

// LineStatus is derived from a line's fulfillment quantities
type LineStatus string

const (
	LineStatusOpen      LineStatus = "open"
	LineStatusAllocated LineStatus = "allocated"
	LineStatusPartial   LineStatus = "partial"
	LineStatusShort     LineStatus = "short"
	LineStatusComplete  LineStatus = "complete"
)

// Order is the aggregate root for the fulfillment bounded context
type Order struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID             string             `bson:"orderId" json:"orderId"`
	OrderNumber         string             `bson:"orderNumber" json:"orderNumber"`
	CustomerID          string             `bson:"customerId" json:"customerId"`
	OrderType           OrderType          `bson:"orderType" json:"orderType"`
	Priority            int                `bson:"priority" json:"priority"` // 1 = most urgent
	Status              OrderStatus        `bson:"status" json:"status"`
	Lines               []Line             `bson:"lines" json:"lines"`
	Metrics             OrderMetrics       `bson:"metrics" json:"metrics"`
	WaveID              string             `bson:"waveId,omitempty" json:"waveId,omitempty"`
	StrategyID          string             `bson:"strategyId,omitempty" json:"strategyId,omitempty"`
	RequestedDeliveryAt *time.Time         `bson:"requestedDeliveryAt,omitempty" json:"requestedDeliveryAt,omitempty"`
	Notes               string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Version             int64              `bson:"version" json:"version"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Domain events - transient, not persisted
	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// Line is one product/quantity request within an order
type Line struct {
	LineNo       int        `bson:"lineNo" json:"lineNo"`
	SKU          string     `bson:"sku" json:"sku"`
	UOM          string     `bson:"uom" json:"uom"`
	QtyOrdered   float64    `bson:"qtyOrdered" json:"qtyOrdered"`
	QtyAllocated float64    `bson:"qtyAllocated" json:"qtyAllocated"`
	QtyPicked    float64    `bson:"qtyPicked" json:"qtyPicked"`
	QtyPacked    float64    `bson:"qtyPacked" json:"qtyPacked"`
	QtyShipped   float64    `bson:"qtyShipped" json:"qtyShipped"`
	Status       LineStatus `bson:"status" json:"status"`
}

// DeriveStatus recomputes the line status from its quantities
func (l *Line) DeriveStatus() LineStatus {
	switch {
	case l.QtyShipped >= l.QtyOrdered && l.QtyOrdered > 0:
		return LineStatusComplete
	case l.QtyAllocated == 0 && l.QtyPicked == 0:
		return LineStatusOpen
	case l.QtyAllocated >= l.QtyOrdered:
		return LineStatusAllocated
	case l.QtyPicked > 0 && l.QtyPicked < l.QtyAllocated:
		return LineStatusPartial
	default:
		return LineStatusShort
	}
}

// HasShortage reports whether the line is under-allocated
func (l *Line) HasShortage() bool {
	return l.QtyAllocated < l.QtyOrdered
}

// OrderMetrics holds derived totals, recomputed whenever lines change
type OrderMetrics struct {
	LineCount      int     `bson:"lineCount" json:"lineCount"`
	TotalOrdered   float64 `bson:"totalOrdered" json:"totalOrdered"`
	TotalAllocated float64 `bson:"totalAllocated" json:"totalAllocated"`
	TotalPicked    float64 `bson:"totalPicked" json:"totalPicked"`
	TotalShipped   float64 `bson:"totalShipped" json:"totalShipped"`
}

// LineAllocation carries the per-line result of an allocation attempt
type LineAllocation struct {
	LineNo       int     `json:"lineNo"`
	QtyAllocated float64 `json:"qtyAllocated"`
}

// NewOrder creates a new Order aggregate in draft status
func NewOrder(
	orderID string,
	orderNumber string,
	customerID string,
	orderType OrderType,
	priority int,
	lines []Line,
	requestedDeliveryAt *time.Time,
	notes string,
) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	if !orderType.IsValid() {
		return nil, ErrInvalidOrderType
	}
	if priority <= 0 {
		return nil, ErrInvalidPriority
	}
	for i := range lines {
		if lines[i].QtyOrdered <= 0 {
			return nil, ErrInvalidQuantity
		}
		lines[i].LineNo = i + 1
		lines[i].Status = LineStatusOpen
	}

	now := time.Now().UTC()
	order := &Order{
		ID:                  primitive.NewObjectID(),
		OrderID:             orderID,
		OrderNumber:         orderNumber,
		CustomerID:          customerID,
		OrderType:           orderType,
		Priority:            priority,
		Status:              StatusDraft,
		Lines:               lines,
		RequestedDeliveryAt: requestedDeliveryAt,
		Notes:               notes,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
		domainEvents:        make([]DomainEvent, 0),
	}
	order.RecomputeMetrics()

	order.addDomainEvent(&OrderCreatedEvent{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		OrderType:   string(orderType),
		LineCount:   len(lines),
		CreatedAt:   now,
	})

	return order, nil
}

// Verify transitions the order from draft to verified
func (o *Order) Verify() error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if o.Status != StatusDraft {
		return ErrInvalidTransition
	}

	hasQty := false
	for _, l := range o.Lines {
		if l.QtyOrdered > 0 {
			hasQty = true
			break
		}
	}
	if !hasQty {
		return ErrNoLines
	}

	o.Status = StatusVerified
	o.touch()
	o.addDomainEvent(&OrderVerifiedEvent{OrderID: o.OrderID, VerifiedAt: o.UpdatedAt})

	return nil
}

// ApplyAllocation records the outcome of an allocation attempt and moves the
// order to planned. A shortage is a normal outcome, not an error; the only
// error conditions are an incompatible status or an over-allocating engine.
func (o *Order) ApplyAllocation(strategyID string, allocations []LineAllocation) error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if o.Status != StatusDraft && o.Status != StatusVerified {
		return ErrInvalidTransition
	}

	byLine := make(map[int]float64, len(allocations))
	for _, a := range allocations {
		byLine[a.LineNo] = a.QtyAllocated
	}

	// Validate before mutating so a bad allocation leaves the order untouched.
	for i := range o.Lines {
		if qty, ok := byLine[o.Lines[i].LineNo]; ok {
			if qty < 0 {
				return ErrInvalidQuantity
			}
			if qty > o.Lines[i].QtyOrdered {
				return fmt.Errorf("line %d: %w", o.Lines[i].LineNo, ErrOverAllocation)
			}
		}
	}

	for i := range o.Lines {
		if qty, ok := byLine[o.Lines[i].LineNo]; ok {
			o.Lines[i].QtyAllocated = qty
		} else {
			o.Lines[i].QtyAllocated = 0
		}
		o.Lines[i].Status = o.Lines[i].DeriveStatus()
	}

	o.StrategyID = strategyID
	o.Status = StatusPlanned
	o.RecomputeMetrics()
	o.touch()
	o.addDomainEvent(&OrderAllocatedEvent{
		OrderID:     o.OrderID,
		StrategyID:  strategyID,
		HasShortage: o.HasShortage(),
		AllocatedAt: o.UpdatedAt,
	})

	return nil
}

// HasShortage reports whether any line is under-allocated. It is always
// recomputed from the lines, never cached.
func (o *Order) HasShortage() bool {
	for _, l := range o.Lines {
		if l.HasShortage() {
			return true
		}
	}
	return false
}

// AcceptShortages releases a partially-allocated order. It is an explicit
// acknowledgment and does not re-attempt allocation.
func (o *Order) AcceptShortages() error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if o.Status != StatusPlanned {
		return ErrInvalidTransition
	}
	if !o.HasShortage() {
		return ErrNoShortageToAccept
	}

	o.Status = StatusReleased
	o.touch()
	o.addDomainEvent(&OrderReleasedEvent{
		OrderID:           o.OrderID,
		ShortagesAccepted: true,
		ReleasedAt:        o.UpdatedAt,
	})

	return nil
}

// Release moves a fully-allocated order to released
func (o *Order) Release() error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if o.Status != StatusPlanned {
		return ErrInvalidTransition
	}
	if o.HasShortage() {
		return ErrShortageBlocksRelease
	}

	o.Status = StatusReleased
	o.touch()
	o.addDomainEvent(&OrderReleasedEvent{
		OrderID:    o.OrderID,
		ReleasedAt: o.UpdatedAt,
	})

	return nil
}

// StartPicking transitions a released order to picking. Picking progress
// itself is owned by the external picking process.
func (o *Order) StartPicking() error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if o.Status != StatusReleased {
		return ErrInvalidTransition
	}

	o.Status = StatusPicking
	o.touch()

	return nil
}

// RecordLineProgress updates a line's picked/packed/shipped quantities.
// Quantities are monotonically non-decreasing and bounded by the prior
// pipeline stage.
func (o *Order) RecordLineProgress(lineNo int, picked, packed, shipped float64) error {
	for i := range o.Lines {
		if o.Lines[i].LineNo != lineNo {
			continue
		}
		l := &o.Lines[i]
		if picked < l.QtyPicked || packed < l.QtyPacked || shipped < l.QtyShipped {
			return ErrQuantityRegression
		}
		if picked > l.QtyAllocated || packed > picked || shipped > packed {
			return ErrInvalidQuantity
		}
		l.QtyPicked = picked
		l.QtyPacked = packed
		l.QtyShipped = shipped
		l.Status = l.DeriveStatus()
		o.RecomputeMetrics()
		o.touch()
		return nil
	}
	return ErrLineNotFound
}

// MarkShipped transitions the order to its terminal shipped status
func (o *Order) MarkShipped() error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if o.Status != StatusPicking {
		return ErrInvalidTransition
	}

	o.Status = StatusShipped
	o.touch()
	o.addDomainEvent(&OrderShippedEvent{OrderID: o.OrderID, ShippedAt: o.UpdatedAt})

	return nil
}

// Cancel cancels the order. Cancelling an already-cancelled order is a no-op
// success so bulk cancellation stays simple.
func (o *Order) Cancel(reason string) error {
	if o.Status == StatusCancelled {
		return nil
	}
	if o.Status == StatusShipped {
		return ErrOrderShipped
	}

	o.Status = StatusCancelled
	o.touch()
	o.addDomainEvent(&OrderCancelledEvent{
		OrderID:     o.OrderID,
		Reason:      reason,
		CancelledAt: o.UpdatedAt,
	})

	return nil
}

// AssignToWave assigns the order to a wave. Only unwaved orders in an
// allocatable status are eligible.
func (o *Order) AssignToWave(waveID string) error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if o.WaveID != "" {
		return ErrOrderAlreadyWaved
	}
	if o.Status != StatusDraft && o.Status != StatusVerified {
		return ErrInvalidTransition
	}

	o.WaveID = waveID
	o.touch()
	o.addDomainEvent(&OrderAssignedToWaveEvent{
		OrderID:    o.OrderID,
		WaveID:     waveID,
		AssignedAt: o.UpdatedAt,
	})

	return nil
}

// ClearWave removes the wave assignment, used when a planning wave is cancelled
func (o *Order) ClearWave() error {
	if o.WaveID == "" {
		return ErrOrderNotWaved
	}
	o.WaveID = ""
	o.touch()
	return nil
}

// IsWaveEligible reports whether the order can join a wave
func (o *Order) IsWaveEligible() bool {
	return o.WaveID == "" && (o.Status == StatusDraft || o.Status == StatusVerified)
}

// RecomputeMetrics refreshes the derived totals from the lines
func (o *Order) RecomputeMetrics() {
	m := OrderMetrics{LineCount: len(o.Lines)}
	for _, l := range o.Lines {
		m.TotalOrdered += l.QtyOrdered
		m.TotalAllocated += l.QtyAllocated
		m.TotalPicked += l.QtyPicked
		m.TotalShipped += l.QtyShipped
	}
	o.Metrics = m
}

// TotalOrdered returns the total ordered units across all lines
func (o *Order) TotalOrdered() float64 {
	total := 0.0
	for _, l := range o.Lines {
		total += l.QtyOrdered
	}
	return total
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) addDomainEvent(event DomainEvent) {
	o.domainEvents = append(o.domainEvents, event)
}

// DomainEvents returns all pending domain events
func (o *Order) DomainEvents() []DomainEvent {
	return o.domainEvents
}

// ClearDomainEvents clears all pending domain events
func (o *Order) ClearDomainEvents() {
	o.domainEvents = make([]DomainEvent, 0)
}
