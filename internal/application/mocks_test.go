package application

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/fulfillment-service/pkg/logging"
	"github.com/wms-platform/fulfillment-service/pkg/metrics"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// MockOrderRepository is a mock implementation of domain.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDs(ctx context.Context, orderIDs []string) ([]*domain.Order, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindWaveCandidates(ctx context.Context, criteria domain.WaveCriteria) ([]*domain.Order, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

// MockWaveRepository is a mock implementation of domain.WaveRepository
type MockWaveRepository struct {
	mock.Mock
}

func (m *MockWaveRepository) Save(ctx context.Context, wave *domain.Wave) error {
	args := m.Called(ctx, wave)
	return args.Error(0)
}

func (m *MockWaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	args := m.Called(ctx, waveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wave), args.Error(1)
}

func (m *MockWaveRepository) FindByStatus(ctx context.Context, status domain.WaveStatus) ([]*domain.Wave, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Wave), args.Error(1)
}

func (m *MockWaveRepository) FindActive(ctx context.Context) ([]*domain.Wave, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Wave), args.Error(1)
}

// MockStrategyRepository is a mock implementation of domain.StrategyRepository
type MockStrategyRepository struct {
	mock.Mock
}

func (m *MockStrategyRepository) FindActive(ctx context.Context) ([]*domain.AllocationStrategy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AllocationStrategy), args.Error(1)
}

func (m *MockStrategyRepository) FindByID(ctx context.Context, strategyID string) (*domain.AllocationStrategy, error) {
	args := m.Called(ctx, strategyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllocationStrategy), args.Error(1)
}

// MockPickTaskRepository is a mock implementation of domain.PickTaskRepository
type MockPickTaskRepository struct {
	mock.Mock
}

func (m *MockPickTaskRepository) SaveAll(ctx context.Context, tasks []domain.PickTask) error {
	args := m.Called(ctx, tasks)
	return args.Error(0)
}

func (m *MockPickTaskRepository) FindByWaveID(ctx context.Context, waveID string) ([]domain.PickTask, error) {
	args := m.Called(ctx, waveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PickTask), args.Error(1)
}

// MockAllocationEngine is a mock implementation of domain.AllocationEngine
type MockAllocationEngine struct {
	mock.Mock
}

func (m *MockAllocationEngine) Allocate(ctx context.Context, order *domain.Order, strategy *domain.AllocationStrategy) (*domain.AllocationResult, error) {
	args := m.Called(ctx, order, strategy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllocationResult), args.Error(1)
}

// MockEventPublisher is a mock implementation of domain.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Test helpers

func newTestLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "fulfillment-service-test",
		Output:      io.Discard,
	})
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("fulfillment-service-test"))
}

type serviceMocks struct {
	orders     *MockOrderRepository
	waves      *MockWaveRepository
	strategies *MockStrategyRepository
	pickTasks  *MockPickTaskRepository
	engine     *MockAllocationEngine
	publisher  *MockEventPublisher
}

func newServiceMocks() *serviceMocks {
	return &serviceMocks{
		orders:     new(MockOrderRepository),
		waves:      new(MockWaveRepository),
		strategies: new(MockStrategyRepository),
		pickTasks:  new(MockPickTaskRepository),
		engine:     new(MockAllocationEngine),
		publisher:  new(MockEventPublisher),
	}
}

func (m *serviceMocks) orderService() *OrderApplicationService {
	return NewOrderApplicationService(m.orders, m.strategies, m.pickTasks, m.engine, m.publisher, newTestMetrics(), newTestLogger())
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.orders.AssertExpectations(t)
	m.waves.AssertExpectations(t)
	m.strategies.AssertExpectations(t)
	m.pickTasks.AssertExpectations(t)
	m.engine.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

// Aggregate fixtures

func newDraftOrder(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(orderID, "SO-"+orderID, "CUST-001", domain.OrderTypeSales, 2,
		[]domain.Line{
			{SKU: "SKU-001", UOM: "EA", QtyOrdered: 10},
			{SKU: "SKU-002", UOM: "EA", QtyOrdered: 5},
		}, nil, "")
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func newVerifiedOrder(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	order := newDraftOrder(t, orderID)
	require.NoError(t, order.Verify())
	order.ClearDomainEvents()
	return order
}

func newPlannedOrder(t *testing.T, orderID string, allocations []domain.LineAllocation) *domain.Order {
	t.Helper()
	order := newVerifiedOrder(t, orderID)
	require.NoError(t, order.ApplyAllocation("STRAT-01", allocations))
	order.ClearDomainEvents()
	return order
}

func fullyAllocated() []domain.LineAllocation {
	return []domain.LineAllocation{
		{LineNo: 1, QtyAllocated: 10},
		{LineNo: 2, QtyAllocated: 5},
	}
}

func shortAllocated() []domain.LineAllocation {
	return []domain.LineAllocation{
		{LineNo: 1, QtyAllocated: 10},
		{LineNo: 2, QtyAllocated: 3},
	}
}

func newSalesStrategy(strategyID string, priority int) *domain.AllocationStrategy {
	return &domain.AllocationStrategy{
		StrategyID:  strategyID,
		Name:        strategyID,
		Active:      true,
		PickingType: domain.PickingTypeDiscrete,
		Rules: domain.StrategyRules{
			PickingPolicy: "discrete_pick",
			SplitMode:     domain.SplitModeSingleWarehouse,
		},
		OrderTypes: []domain.OrderType{domain.OrderTypeSales},
		Priority:   priority,
	}
}

func newPlanningWave(t *testing.T, waveID string, members ...*domain.Order) *domain.Wave {
	t.Helper()
	wave, err := domain.NewWave(waveID, waveID, domain.WaveTypeEcommerceDaily, domain.WaveCriteria{})
	require.NoError(t, err)
	for _, o := range members {
		require.NoError(t, o.AssignToWave(waveID))
		o.ClearDomainEvents()
		require.NoError(t, wave.AddOrder(domain.WaveOrder{
			OrderID:     o.OrderID,
			OrderNumber: o.OrderNumber,
			CustomerID:  o.CustomerID,
			OrderType:   o.OrderType,
			Priority:    o.Priority,
			LineCount:   len(o.Lines),
			TotalQty:    o.Metrics.TotalOrdered,
		}))
	}
	wave.ClearDomainEvents()
	return wave
}
