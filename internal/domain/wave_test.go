package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestWaveOrder(orderID string) WaveOrder {
	return WaveOrder{
		OrderID:     orderID,
		OrderNumber: "SO-" + orderID,
		CustomerID:  "CUST-001",
		OrderType:   OrderTypeSales,
		Priority:    2,
		LineCount:   2,
		TotalQty:    15,
	}
}

func createTestWave(t *testing.T) *Wave {
	t.Helper()
	wave, err := NewWave("WV-001", "WV-ECD-20260830-abc12345", WaveTypeEcommerceDaily, WaveCriteria{})
	require.NoError(t, err)
	return wave
}

func createAllocatedWave(t *testing.T) *Wave {
	t.Helper()
	wave := createTestWave(t)
	require.NoError(t, wave.AddOrder(createTestWaveOrder("ORD-001")))
	require.NoError(t, wave.MarkAllocated())
	return wave
}

func TestNewWave(t *testing.T) {
	t.Run("Valid wave starts in planning", func(t *testing.T) {
		wave := createTestWave(t)

		assert.Equal(t, WaveStatusPlanning, wave.Status)
		assert.Equal(t, int64(1), wave.Version)
		assert.Empty(t, wave.Orders)
		require.Len(t, wave.DomainEvents(), 1)
		assert.Equal(t, "wms.wave.created", wave.DomainEvents()[0].EventType())
	})

	t.Run("Invalid wave type", func(t *testing.T) {
		wave, err := NewWave("WV-001", "WV-001", WaveType("hourly"), WaveCriteria{})

		assert.ErrorIs(t, err, ErrInvalidWaveType)
		assert.Nil(t, wave)
	})
}

func TestWaveTypeDefaultPickingPolicy(t *testing.T) {
	tests := []struct {
		waveType    WaveType
		expected    string
		expectError error
	}{
		{WaveTypeEcommerceDaily, "batch_pick", nil},
		{WaveTypeEcommerceExpress, "express_pick", nil},
		{WaveTypeB2BUrgent, "discrete_pick", nil},
		{WaveTypeWholesale, "pallet_pick", nil},
		{WaveTypeCustom, "", ErrCustomNeedsNoDefault},
		{WaveType("hourly"), "", ErrInvalidWaveType},
	}

	for _, tt := range tests {
		t.Run(string(tt.waveType), func(t *testing.T) {
			policy, err := tt.waveType.DefaultPickingPolicy()

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, policy)
		})
	}
}

func TestWaveAddOrder(t *testing.T) {
	t.Run("Orders join while planning", func(t *testing.T) {
		wave := createTestWave(t)

		require.NoError(t, wave.AddOrder(createTestWaveOrder("ORD-001")))
		require.NoError(t, wave.AddOrder(createTestWaveOrder("ORD-002")))

		assert.Equal(t, 2, wave.OrderCount())
		assert.True(t, wave.HasOrder("ORD-001"))
		assert.Equal(t, 4, wave.TotalLines())
		assert.Equal(t, 30.0, wave.TotalQty())
	})

	t.Run("Duplicate order is rejected", func(t *testing.T) {
		wave := createTestWave(t)
		require.NoError(t, wave.AddOrder(createTestWaveOrder("ORD-001")))

		err := wave.AddOrder(createTestWaveOrder("ORD-001"))

		assert.ErrorIs(t, err, ErrOrderAlreadyInWave)
		assert.Equal(t, 1, wave.OrderCount())
	})

	t.Run("Allocated wave rejects new orders", func(t *testing.T) {
		wave := createAllocatedWave(t)

		err := wave.AddOrder(createTestWaveOrder("ORD-002"))

		assert.ErrorIs(t, err, ErrWaveNotPlanning)
	})
}

func TestWaveLifecycle(t *testing.T) {
	t.Run("Empty wave cannot be allocated", func(t *testing.T) {
		wave := createTestWave(t)

		err := wave.MarkAllocated()

		assert.ErrorIs(t, err, ErrWaveEmpty)
	})

	t.Run("Planning to completed", func(t *testing.T) {
		wave := createAllocatedWave(t)
		assert.NotNil(t, wave.AllocatedAt)

		require.NoError(t, wave.Release())
		assert.Equal(t, WaveStatusReleased, wave.Status)
		assert.NotNil(t, wave.ReleasedAt)

		require.NoError(t, wave.Complete())
		assert.Equal(t, WaveStatusCompleted, wave.Status)
		assert.NotNil(t, wave.CompletedAt)
	})

	t.Run("Release requires allocated", func(t *testing.T) {
		wave := createTestWave(t)

		err := wave.Release()

		assert.ErrorIs(t, err, ErrWaveNotAllocated)
	})

	t.Run("Complete requires released", func(t *testing.T) {
		wave := createAllocatedWave(t)

		err := wave.Complete()

		assert.ErrorIs(t, err, ErrWaveNotReleased)
	})

	t.Run("Completed wave cannot be cancelled", func(t *testing.T) {
		wave := createAllocatedWave(t)
		require.NoError(t, wave.Release())
		require.NoError(t, wave.Complete())

		err := wave.Cancel("too late")

		assert.ErrorIs(t, err, ErrWaveClosed)
	})

	t.Run("Cancel is idempotent", func(t *testing.T) {
		wave := createTestWave(t)
		require.NoError(t, wave.Cancel("first"))
		eventCount := len(wave.DomainEvents())

		err := wave.Cancel("second")

		require.NoError(t, err)
		assert.Equal(t, WaveStatusCancelled, wave.Status)
		assert.Len(t, wave.DomainEvents(), eventCount)
	})

	t.Run("Released wave can be cancelled", func(t *testing.T) {
		wave := createAllocatedWave(t)
		require.NoError(t, wave.Release())

		require.NoError(t, wave.Cancel("pick equipment failure"))
		assert.Equal(t, WaveStatusCancelled, wave.Status)
	})
}

func TestWaveCriteriaMatchesOrder(t *testing.T) {
	deliveryAt := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	order, err := NewOrder("ORD-001", "SO-1001", "CUST-001", OrderTypeSales, 2, createTestLines(), &deliveryAt, "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		criteria WaveCriteria
		expected bool
	}{
		{
			name:     "Empty criteria matches everything",
			criteria: WaveCriteria{},
			expected: true,
		},
		{
			name:     "Customer match",
			criteria: WaveCriteria{CustomerID: "CUST-001"},
			expected: true,
		},
		{
			name:     "Customer mismatch",
			criteria: WaveCriteria{CustomerID: "CUST-999"},
			expected: false,
		},
		{
			name:     "Order type mismatch",
			criteria: WaveCriteria{OrderType: OrderTypeReturn},
			expected: false,
		},
		{
			name:     "Priority bound met",
			criteria: WaveCriteria{MaxPriority: 2},
			expected: true,
		},
		{
			name:     "Priority bound exceeded",
			criteria: WaveCriteria{MaxPriority: 1},
			expected: false,
		},
		{
			name: "Delivery window contains date",
			criteria: WaveCriteria{
				DeliveryDateFrom: timePtr(deliveryAt.AddDate(0, 0, -1)),
				DeliveryDateTo:   timePtr(deliveryAt.AddDate(0, 0, 1)),
			},
			expected: true,
		},
		{
			name:     "Delivery window before date",
			criteria: WaveCriteria{DeliveryDateTo: timePtr(deliveryAt.AddDate(0, 0, -1))},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.criteria.MatchesOrder(order))
		})
	}

	t.Run("Delivery window excludes orders without a requested date", func(t *testing.T) {
		undated := createTestOrder(t)
		criteria := WaveCriteria{DeliveryDateFrom: timePtr(deliveryAt)}

		assert.False(t, criteria.MatchesOrder(undated))
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
