package domain

import (
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoStrategyFound signals that no active strategy matches an order. It
// blocks allocation for that order; bulk operations treat it as a skip.
var ErrNoStrategyFound = errors.New("no active allocation strategy matches order")

// PickingType describes the picking profile a strategy drives
type PickingType string

const (
	PickingTypeDiscrete PickingType = "discrete"
	PickingTypeBatch    PickingType = "batch"
	PickingTypeZone     PickingType = "zone"
	PickingTypeCluster  PickingType = "cluster"
)

// SplitMode controls whether an order may be sourced from multiple warehouses
type SplitMode string

const (
	SplitModeSingleWarehouse SplitMode = "single_warehouse"
	SplitModeAllowSplit      SplitMode = "allow_split"
)

// StrategyRules is the structured policy document attached to a strategy.
// It is immutable once the strategy has been referenced by an allocation.
type StrategyRules struct {
	PickingPolicy string    `bson:"pickingPolicy" json:"pickingPolicy"`
	SplitMode     SplitMode `bson:"splitMode" json:"splitMode"`
	MaxSplits     int       `bson:"maxSplits" json:"maxSplits"`
}

// AllocationStrategy is a named policy describing how inventory is sourced
// for matching orders
type AllocationStrategy struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StrategyID  string             `bson:"strategyId" json:"strategyId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	PickingType PickingType        `bson:"pickingType" json:"pickingType"`
	Rules       StrategyRules      `bson:"rules" json:"rules"`

	// Matching predicate, declarative so the resolver stays pure.
	// Empty OrderTypes matches any type; MaxOrderPriority 0 is unbounded.
	OrderTypes       []OrderType `bson:"orderTypes,omitempty" json:"orderTypes,omitempty"`
	MaxOrderPriority int         `bson:"maxOrderPriority" json:"maxOrderPriority"`
	Priority         int         `bson:"priority" json:"priority"` // declared tie-break rank, lower wins

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Matches reports whether the strategy applies to the order
func (s *AllocationStrategy) Matches(order *Order) bool {
	if !s.Active {
		return false
	}
	if len(s.OrderTypes) > 0 {
		found := false
		for _, t := range s.OrderTypes {
			if t == order.OrderType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.MaxOrderPriority > 0 && order.Priority > s.MaxOrderPriority {
		return false
	}
	return true
}

// isTypeSpecific reports whether the strategy names explicit order types
// rather than acting as a catch-all
func (s *AllocationStrategy) isTypeSpecific() bool {
	return len(s.OrderTypes) > 0
}

// ResolveStrategy picks the single strategy governing allocation for the
// order. It is pure and deterministic: the most specific match wins, then the
// lowest declared priority, then the lowest strategy id.
func ResolveStrategy(order *Order, strategies []*AllocationStrategy) (*AllocationStrategy, error) {
	matched := make([]*AllocationStrategy, 0, len(strategies))
	for _, s := range strategies {
		if s.Matches(order) {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNoStrategyFound
	}

	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := matched[i], matched[j]
		if si.isTypeSpecific() != sj.isTypeSpecific() {
			return si.isTypeSpecific()
		}
		if si.Priority != sj.Priority {
			return si.Priority < sj.Priority
		}
		return si.StrategyID < sj.StrategyID
	})

	return matched[0], nil
}
