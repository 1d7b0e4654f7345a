package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickTaskStatus represents the status of a pick task
type PickTaskStatus string

const (
	PickTaskStatusPending    PickTaskStatus = "pending"
	PickTaskStatusInProgress PickTaskStatus = "in_progress"
	PickTaskStatusCompleted  PickTaskStatus = "completed"
	PickTaskStatusShort      PickTaskStatus = "short"
)

// PickTask is one unit of picking work generated by wave allocation. Tasks
// are created by the allocation engine and are read-only from this service's
// perspective.
type PickTask struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID     string             `bson:"taskId" json:"taskId"`
	WaveID     string             `bson:"waveId" json:"waveId"`
	OrderID    string             `bson:"orderId" json:"orderId"`
	SKU        string             `bson:"sku" json:"sku"`
	LocationID string             `bson:"locationId" json:"locationId"`
	QtyToPick  float64            `bson:"qtyToPick" json:"qtyToPick"`
	QtyPicked  float64            `bson:"qtyPicked" json:"qtyPicked"`
	Status     PickTaskStatus     `bson:"status" json:"status"`
	AssigneeID string             `bson:"assigneeId,omitempty" json:"assigneeId,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
