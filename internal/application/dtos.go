package application

import "time"

// OrderDTO is the API representation of an order
type OrderDTO struct {
	OrderID             string         `json:"orderId"`
	OrderNumber         string         `json:"orderNumber"`
	CustomerID          string         `json:"customerId"`
	OrderType           string         `json:"orderType"`
	Priority            int            `json:"priority"`
	Status              string         `json:"status"`
	Lines               []OrderLineDTO `json:"lines"`
	HasShortage         bool           `json:"hasShortage"`
	WaveID              string         `json:"waveId,omitempty"`
	StrategyID          string         `json:"strategyId,omitempty"`
	RequestedDeliveryAt *time.Time     `json:"requestedDeliveryAt,omitempty"`
	Notes               string         `json:"notes,omitempty"`
	TotalOrdered        float64        `json:"totalOrdered"`
	TotalAllocated      float64        `json:"totalAllocated"`
	TotalPicked         float64        `json:"totalPicked"`
	TotalShipped        float64        `json:"totalShipped"`
	Version             int64          `json:"version"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// OrderLineDTO is the API representation of one order line
type OrderLineDTO struct {
	LineNo       int     `json:"lineNo"`
	SKU          string  `json:"sku"`
	UOM          string  `json:"uom"`
	QtyOrdered   float64 `json:"qtyOrdered"`
	QtyAllocated float64 `json:"qtyAllocated"`
	QtyPicked    float64 `json:"qtyPicked"`
	QtyPacked    float64 `json:"qtyPacked"`
	QtyShipped   float64 `json:"qtyShipped"`
	Status       string  `json:"status"`
}

// AllocationResultDTO reports the outcome of allocating one order
type AllocationResultDTO struct {
	OrderID     string   `json:"orderId"`
	StrategyID  string   `json:"strategyId"`
	Status      string   `json:"status"`
	HasShortage bool     `json:"hasShortage"`
	ShortLines  []int    `json:"shortLines,omitempty"`
	Order       OrderDTO `json:"order"`
}

// WaveDTO is the API representation of a wave
type WaveDTO struct {
	WaveID       string         `json:"waveId"`
	WaveNumber   string         `json:"waveNumber"`
	WaveType     string         `json:"waveType"`
	Status       string         `json:"status"`
	StrategyID   string         `json:"strategyId,omitempty"`
	StrategyName string         `json:"strategyName,omitempty"`
	Criteria     CriteriaDTO    `json:"criteria"`
	Orders       []WaveOrderDTO `json:"orders"`
	OrderCount   int            `json:"orderCount"`
	TotalLines   int            `json:"totalLines"`
	TotalQty     float64        `json:"totalQty"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	ReleasedAt   *time.Time     `json:"releasedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
}

// WaveOrderDTO is the summary of one order bundled into a wave
type WaveOrderDTO struct {
	OrderID             string     `json:"orderId"`
	OrderNumber         string     `json:"orderNumber"`
	CustomerID          string     `json:"customerId"`
	OrderType           string     `json:"orderType"`
	Priority            int        `json:"priority"`
	LineCount           int        `json:"lineCount"`
	TotalQty            float64    `json:"totalQty"`
	RequestedDeliveryAt *time.Time `json:"requestedDeliveryAt,omitempty"`
}

// CriteriaDTO is the API representation of wave selection criteria
type CriteriaDTO struct {
	DeliveryDateFrom *time.Time `json:"deliveryDateFrom,omitempty"`
	DeliveryDateTo   *time.Time `json:"deliveryDateTo,omitempty"`
	CustomerID       string     `json:"customerId,omitempty"`
	OrderType        string     `json:"orderType,omitempty"`
	MaxPriority      int        `json:"maxPriority,omitempty"`
}

// WaveSimulationDTO is the read-only preview a simulate call returns
type WaveSimulationDTO struct {
	WaveType      string         `json:"waveType"`
	Criteria      CriteriaDTO    `json:"criteria"`
	Orders        []WaveOrderDTO `json:"orders"`
	OrderCount    int            `json:"orderCount"`
	TotalLines    int            `json:"totalLines"`
	TotalQty      float64        `json:"totalQty"`
	PickingPolicy string         `json:"pickingPolicy,omitempty"`
	StrategyID    string         `json:"strategyId,omitempty"`
	StrategyName  string         `json:"strategyName,omitempty"`
	SimulatedAt   time.Time      `json:"simulatedAt"`
}

// BulkItemFailureDTO reports one failed or skipped id within a bulk operation
type BulkItemFailureDTO struct {
	OrderID string `json:"orderId"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkResultDTO summarizes a best-effort bulk operation. The counts always
// satisfy success+failure+skipped == requested.
type BulkResultDTO struct {
	Operation string               `json:"operation"`
	Requested int                  `json:"requested"`
	Success   int                  `json:"success"`
	Failure   int                  `json:"failure"`
	Skipped   int                  `json:"skipped"`
	Failures  []BulkItemFailureDTO `json:"failures,omitempty"`
	SkippedID []string             `json:"skippedIds,omitempty"`
}

// CommitWaveResultDTO reports the outcome of a wave commit. Orders that
// became ineligible between simulate and commit appear under Skipped.
type CommitWaveResultDTO struct {
	Wave      WaveDTO              `json:"wave"`
	Requested int                  `json:"requested"`
	Bundled   int                  `json:"bundled"`
	Skipped   []BulkItemFailureDTO `json:"skipped,omitempty"`
}

// PickTaskDTO is the API representation of one pick task
type PickTaskDTO struct {
	TaskID     string  `json:"taskId"`
	WaveID     string  `json:"waveId"`
	OrderID    string  `json:"orderId"`
	SKU        string  `json:"sku"`
	LocationID string  `json:"locationId"`
	QtyToPick  float64 `json:"qtyToPick"`
	QtyPicked  float64 `json:"qtyPicked"`
	Status     string  `json:"status"`
	AssigneeID string  `json:"assigneeId,omitempty"`
}

// WaveDetailDTO is a wave together with its pick tasks
type WaveDetailDTO struct {
	Wave      WaveDTO       `json:"wave"`
	PickTasks []PickTaskDTO `json:"pickTasks"`
}

// StrategyDTO is the API representation of an allocation strategy
type StrategyDTO struct {
	StrategyID       string   `json:"strategyId"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Active           bool     `json:"active"`
	PickingType      string   `json:"pickingType"`
	PickingPolicy    string   `json:"pickingPolicy"`
	SplitMode        string   `json:"splitMode"`
	MaxSplits        int      `json:"maxSplits"`
	OrderTypes       []string `json:"orderTypes,omitempty"`
	MaxOrderPriority int      `json:"maxOrderPriority,omitempty"`
	Priority         int      `json:"priority"`
}
