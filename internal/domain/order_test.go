package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestLines() []Line {
	return []Line{
		{SKU: "SKU-001", UOM: "EA", QtyOrdered: 10},
		{SKU: "SKU-002", UOM: "EA", QtyOrdered: 5},
	}
}

func createTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("ORD-001", "SO-1001", "CUST-001", OrderTypeSales, 2, createTestLines(), nil, "")
	require.NoError(t, err)
	return order
}

func createVerifiedOrder(t *testing.T) *Order {
	t.Helper()
	order := createTestOrder(t)
	require.NoError(t, order.Verify())
	return order
}

func fullAllocation() []LineAllocation {
	return []LineAllocation{
		{LineNo: 1, QtyAllocated: 10},
		{LineNo: 2, QtyAllocated: 5},
	}
}

func shortAllocation() []LineAllocation {
	return []LineAllocation{
		{LineNo: 1, QtyAllocated: 10},
		{LineNo: 2, QtyAllocated: 3},
	}
}

func TestNewOrder(t *testing.T) {
	tests := []struct {
		name        string
		orderType   OrderType
		priority    int
		lines       []Line
		expectError error
	}{
		{
			name:      "Valid sales order",
			orderType: OrderTypeSales,
			priority:  2,
			lines:     createTestLines(),
		},
		{
			name:        "No lines",
			orderType:   OrderTypeSales,
			priority:    2,
			lines:       []Line{},
			expectError: ErrNoLines,
		},
		{
			name:        "Invalid order type",
			orderType:   OrderType("bogus"),
			priority:    2,
			lines:       createTestLines(),
			expectError: ErrInvalidOrderType,
		},
		{
			name:        "Zero quantity line",
			orderType:   OrderTypeSales,
			priority:    2,
			lines:       []Line{{SKU: "SKU-001", QtyOrdered: 0}},
			expectError: ErrInvalidQuantity,
		},
		{
			name:        "Invalid priority",
			orderType:   OrderTypeSales,
			priority:    0,
			lines:       createTestLines(),
			expectError: ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder("ORD-001", "SO-1001", "CUST-001", tt.orderType, tt.priority, tt.lines, nil, "")

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, order)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, StatusDraft, order.Status)
			assert.Equal(t, int64(1), order.Version)
			for i, l := range order.Lines {
				assert.Equal(t, i+1, l.LineNo)
				assert.Equal(t, LineStatusOpen, l.Status)
			}
			require.Len(t, order.DomainEvents(), 1)
			assert.Equal(t, "wms.order.created", order.DomainEvents()[0].EventType())
		})
	}
}

func TestOrderVerify(t *testing.T) {
	t.Run("Draft order is verified", func(t *testing.T) {
		order := createTestOrder(t)

		err := order.Verify()

		require.NoError(t, err)
		assert.Equal(t, StatusVerified, order.Status)
	})

	t.Run("Already verified order is rejected", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.Verify()

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Cancelled order is rejected", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.Cancel("test"))

		err := order.Verify()

		assert.ErrorIs(t, err, ErrOrderCancelled)
	})
}

func TestApplyAllocation(t *testing.T) {
	t.Run("Full allocation moves order to planned without shortage", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.ApplyAllocation("STRAT-01", fullAllocation())

		require.NoError(t, err)
		assert.Equal(t, StatusPlanned, order.Status)
		assert.False(t, order.HasShortage())
		assert.Equal(t, "STRAT-01", order.StrategyID)
		assert.Equal(t, LineStatusAllocated, order.Lines[0].Status)
		assert.Equal(t, 15.0, order.Metrics.TotalAllocated)
	})

	t.Run("Partial allocation moves order to planned with shortage", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.ApplyAllocation("STRAT-01", shortAllocation())

		require.NoError(t, err)
		assert.Equal(t, StatusPlanned, order.Status)
		assert.True(t, order.HasShortage())
		assert.Equal(t, LineStatusShort, order.Lines[1].Status)
	})

	t.Run("Lines missing from the result are fully short", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.ApplyAllocation("STRAT-01", []LineAllocation{{LineNo: 1, QtyAllocated: 10}})

		require.NoError(t, err)
		assert.Equal(t, 0.0, order.Lines[1].QtyAllocated)
		assert.True(t, order.HasShortage())
	})

	t.Run("Over-allocation leaves the order untouched", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.ApplyAllocation("STRAT-01", []LineAllocation{
			{LineNo: 1, QtyAllocated: 10},
			{LineNo: 2, QtyAllocated: 99},
		})

		assert.ErrorIs(t, err, ErrOverAllocation)
		assert.Equal(t, StatusVerified, order.Status)
		assert.Equal(t, 0.0, order.Lines[0].QtyAllocated)
		assert.Empty(t, order.StrategyID)
	})

	t.Run("Negative allocation is rejected", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.ApplyAllocation("STRAT-01", []LineAllocation{{LineNo: 1, QtyAllocated: -1}})

		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, StatusVerified, order.Status)
	})

	t.Run("Allocation works from draft as well", func(t *testing.T) {
		order := createTestOrder(t)

		err := order.ApplyAllocation("STRAT-01", fullAllocation())

		require.NoError(t, err)
		assert.Equal(t, StatusPlanned, order.Status)
	})

	t.Run("Planned order cannot be re-allocated", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))

		err := order.ApplyAllocation("STRAT-02", fullAllocation())

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestReleaseAndAcceptShortages(t *testing.T) {
	t.Run("Fully allocated order is released", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))

		err := order.Release()

		require.NoError(t, err)
		assert.Equal(t, StatusReleased, order.Status)
	})

	t.Run("Shortage blocks release", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", shortAllocation()))

		err := order.Release()

		assert.ErrorIs(t, err, ErrShortageBlocksRelease)
		assert.Equal(t, StatusPlanned, order.Status)
	})

	t.Run("Accepting shortages releases a short order", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", shortAllocation()))

		err := order.AcceptShortages()

		require.NoError(t, err)
		assert.Equal(t, StatusReleased, order.Status)

		events := order.DomainEvents()
		last, ok := events[len(events)-1].(*OrderReleasedEvent)
		require.True(t, ok)
		assert.True(t, last.ShortagesAccepted)
	})

	t.Run("Accepting shortages on a full order is rejected", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))

		err := order.AcceptShortages()

		assert.ErrorIs(t, err, ErrNoShortageToAccept)
	})

	t.Run("Accepting shortages before allocation is rejected", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.AcceptShortages()

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("Cancel from draft", func(t *testing.T) {
		order := createTestOrder(t)

		require.NoError(t, order.Cancel("customer request"))
		assert.Equal(t, StatusCancelled, order.Status)
	})

	t.Run("Cancel is idempotent", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.Cancel("first"))
		eventCount := len(order.DomainEvents())

		err := order.Cancel("second")

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, order.Status)
		assert.Len(t, order.DomainEvents(), eventCount, "no-op cancel must not emit another event")
	})

	t.Run("Shipped order cannot be cancelled", func(t *testing.T) {
		order := shipTestOrder(t)

		err := order.Cancel("too late")

		assert.ErrorIs(t, err, ErrOrderShipped)
	})

	t.Run("Cancel from picking", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))
		require.NoError(t, order.Release())
		require.NoError(t, order.StartPicking())

		require.NoError(t, order.Cancel("inventory damage"))
		assert.Equal(t, StatusCancelled, order.Status)
	})
}

func shipTestOrder(t *testing.T) *Order {
	t.Helper()
	order := createVerifiedOrder(t)
	require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))
	require.NoError(t, order.Release())
	require.NoError(t, order.StartPicking())
	require.NoError(t, order.RecordLineProgress(1, 10, 10, 10))
	require.NoError(t, order.RecordLineProgress(2, 5, 5, 5))
	require.NoError(t, order.MarkShipped())
	return order
}

func TestRecordLineProgress(t *testing.T) {
	newPickingOrder := func(t *testing.T) *Order {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))
		require.NoError(t, order.Release())
		require.NoError(t, order.StartPicking())
		return order
	}

	t.Run("Progress is recorded and metrics refreshed", func(t *testing.T) {
		order := newPickingOrder(t)

		err := order.RecordLineProgress(1, 4, 2, 0)

		require.NoError(t, err)
		assert.Equal(t, 4.0, order.Lines[0].QtyPicked)
		assert.Equal(t, 4.0, order.Metrics.TotalPicked)
	})

	t.Run("Quantities cannot regress", func(t *testing.T) {
		order := newPickingOrder(t)
		require.NoError(t, order.RecordLineProgress(1, 4, 0, 0))

		err := order.RecordLineProgress(1, 3, 0, 0)

		assert.ErrorIs(t, err, ErrQuantityRegression)
	})

	t.Run("Picked cannot exceed allocated", func(t *testing.T) {
		order := newPickingOrder(t)

		err := order.RecordLineProgress(1, 11, 0, 0)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("Shipped cannot exceed packed", func(t *testing.T) {
		order := newPickingOrder(t)

		err := order.RecordLineProgress(1, 5, 3, 4)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("Unknown line", func(t *testing.T) {
		order := newPickingOrder(t)

		err := order.RecordLineProgress(99, 1, 0, 0)

		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestWaveAssignment(t *testing.T) {
	t.Run("Verified order joins a wave", func(t *testing.T) {
		order := createVerifiedOrder(t)
		assert.True(t, order.IsWaveEligible())

		require.NoError(t, order.AssignToWave("WV-001"))
		assert.Equal(t, "WV-001", order.WaveID)
		assert.False(t, order.IsWaveEligible())
	})

	t.Run("Waved order cannot join another wave", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.AssignToWave("WV-001"))

		err := order.AssignToWave("WV-002")

		assert.ErrorIs(t, err, ErrOrderAlreadyWaved)
	})

	t.Run("Planned order is not wave eligible", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))

		err := order.AssignToWave("WV-001")

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("ClearWave frees the order", func(t *testing.T) {
		order := createVerifiedOrder(t)
		require.NoError(t, order.AssignToWave("WV-001"))

		require.NoError(t, order.ClearWave())
		assert.True(t, order.IsWaveEligible())
	})

	t.Run("ClearWave on unwaved order", func(t *testing.T) {
		order := createVerifiedOrder(t)

		err := order.ClearWave()

		assert.ErrorIs(t, err, ErrOrderNotWaved)
	})
}

// TestOrderFullLifecycle walks the happy path end to end
func TestOrderFullLifecycle(t *testing.T) {
	order := createTestOrder(t)

	require.NoError(t, order.Verify())
	require.NoError(t, order.ApplyAllocation("STRAT-01", fullAllocation()))
	assert.False(t, order.HasShortage())
	require.NoError(t, order.Release())
	require.NoError(t, order.StartPicking())
	require.NoError(t, order.RecordLineProgress(1, 10, 10, 10))
	require.NoError(t, order.RecordLineProgress(2, 5, 5, 5))
	require.NoError(t, order.MarkShipped())

	assert.Equal(t, StatusShipped, order.Status)
	assert.Equal(t, LineStatusComplete, order.Lines[0].Status)
	assert.Equal(t, 15.0, order.Metrics.TotalShipped)

	types := make([]string, 0)
	for _, e := range order.DomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{
		"wms.order.created",
		"wms.order.verified",
		"wms.order.allocated",
		"wms.order.released",
		"wms.order.shipped",
	}, types)
}
