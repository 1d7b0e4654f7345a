package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/wms-platform/fulfillment-service/pkg/errors"
	"github.com/wms-platform/fulfillment-service/pkg/logging"
	"github.com/wms-platform/fulfillment-service/pkg/metrics"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// OrderApplicationService handles order lifecycle use cases
type OrderApplicationService struct {
	orders     domain.OrderRepository
	strategies domain.StrategyRepository
	pickTasks  domain.PickTaskRepository
	engine     domain.AllocationEngine
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewOrderApplicationService creates a new OrderApplicationService
func NewOrderApplicationService(
	orders domain.OrderRepository,
	strategies domain.StrategyRepository,
	pickTasks domain.PickTaskRepository,
	engine domain.AllocationEngine,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *OrderApplicationService {
	return &OrderApplicationService{
		orders:     orders,
		strategies: strategies,
		pickTasks:  pickTasks,
		engine:     engine,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}
}

// CreateOrder creates a new order in draft status
func (s *OrderApplicationService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	lines := make([]domain.Line, len(cmd.Lines))
	for i, l := range cmd.Lines {
		lines[i] = domain.Line{SKU: l.SKU, UOM: l.UOM, QtyOrdered: l.QtyOrdered}
	}

	orderID := "ORD-" + uuid.New().String()
	order, err := domain.NewOrder(orderID, cmd.OrderNumber, cmd.CustomerID, domain.OrderType(cmd.OrderType), cmd.Priority, lines, cmd.RequestedDeliveryAt, cmd.Notes)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.WithError(err).Error("Failed to create order", "orderId", orderID)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.publishEvents(ctx, order)

	s.logger.Info("Created order", "orderId", orderID, "orderType", cmd.OrderType)
	dto := toOrderDTO(order)
	return &dto, nil
}

// VerifyOrder moves a draft order to verified
func (s *OrderApplicationService) VerifyOrder(ctx context.Context, cmd OrderTransitionCommand) (*OrderDTO, error) {
	return s.transition(ctx, cmd.OrderID, "verify", func(order *domain.Order) error {
		return order.Verify()
	})
}

// AllocateOrder reserves inventory for one order. When no strategy id is
// supplied the strategy is resolved from the active strategy set. Shortage
// is a normal outcome, not an error: the order lands in planned either way.
func (s *OrderApplicationService) AllocateOrder(ctx context.Context, cmd AllocateOrderCommand) (*AllocationResultDTO, error) {
	order, err := s.loadOrder(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	strategy, err := s.resolveStrategy(ctx, order, cmd.StrategyID)
	if err != nil {
		s.metrics.ObserveAllocation("failed")
		return nil, err
	}

	result, err := s.engine.Allocate(ctx, order, strategy)
	if err != nil {
		s.metrics.ObserveAllocation("failed")
		s.logger.WithError(err).Error("Allocation engine call failed", "orderId", order.OrderID)
		return nil, fmt.Errorf("failed to allocate order %s: %w", order.OrderID, err)
	}

	if err := order.ApplyAllocation(strategy.StrategyID, result.Lines); err != nil {
		s.metrics.ObserveAllocation("failed")
		return nil, mapDomainError(err)
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.metrics.ObserveAllocation("failed")
		s.logger.WithError(err).Error("Failed to save allocated order", "orderId", order.OrderID)
		return nil, mapDomainError(err)
	}
	if len(result.PickTasks) > 0 {
		if err := s.pickTasks.SaveAll(ctx, result.PickTasks); err != nil {
			s.logger.WithError(err).Warn("Failed to save pick tasks", "orderId", order.OrderID)
		}
	}
	s.publishEvents(ctx, order)

	if order.HasShortage() {
		s.metrics.ObserveAllocation("shortage")
	} else {
		s.metrics.ObserveAllocation("full")
	}

	s.logger.Info("Allocated order",
		"orderId", order.OrderID,
		"strategyId", strategy.StrategyID,
		"hasShortage", order.HasShortage())
	dto := toAllocationResultDTO(order)
	return &dto, nil
}

// AcceptShortages releases a planned order despite unallocated quantity
func (s *OrderApplicationService) AcceptShortages(ctx context.Context, cmd OrderTransitionCommand) (*OrderDTO, error) {
	return s.transition(ctx, cmd.OrderID, "accept shortages", func(order *domain.Order) error {
		return order.AcceptShortages()
	})
}

// ReleaseOrder releases a fully allocated planned order
func (s *OrderApplicationService) ReleaseOrder(ctx context.Context, cmd OrderTransitionCommand) (*OrderDTO, error) {
	return s.transition(ctx, cmd.OrderID, "release", func(order *domain.Order) error {
		return order.Release()
	})
}

// CancelOrder cancels an order. Cancelling an already cancelled order is a no-op.
func (s *OrderApplicationService) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (*OrderDTO, error) {
	return s.transition(ctx, cmd.OrderID, "cancel", func(order *domain.Order) error {
		return order.Cancel(cmd.Reason)
	})
}

// RecordLineProgress records picked/packed/shipped quantities on one line
func (s *OrderApplicationService) RecordLineProgress(ctx context.Context, cmd RecordLineProgressCommand) (*OrderDTO, error) {
	return s.transition(ctx, cmd.OrderID, "record line progress", func(order *domain.Order) error {
		return order.RecordLineProgress(cmd.LineNo, cmd.QtyPicked, cmd.QtyPacked, cmd.QtyShipped)
	})
}

// MarkShipped completes an order once all lines are shipped
func (s *OrderApplicationService) MarkShipped(ctx context.Context, cmd OrderTransitionCommand) (*OrderDTO, error) {
	return s.transition(ctx, cmd.OrderID, "mark shipped", func(order *domain.Order) error {
		return order.MarkShipped()
	})
}

// GetOrder retrieves an order by ID
func (s *OrderApplicationService) GetOrder(ctx context.Context, query GetOrderQuery) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}
	dto := toOrderDTO(order)
	return &dto, nil
}

// ListOrdersByStatus lists orders in a given status
func (s *OrderApplicationService) ListOrdersByStatus(ctx context.Context, query ListOrdersByStatusQuery) ([]OrderDTO, error) {
	orders, err := s.orders.FindByStatus(ctx, domain.OrderStatus(query.Status))
	if err != nil {
		s.logger.WithError(err).Error("Failed to list orders", "status", query.Status)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	return dtos, nil
}

// ListStrategies lists the active allocation strategies
func (s *OrderApplicationService) ListStrategies(ctx context.Context) ([]StrategyDTO, error) {
	strategies, err := s.strategies.FindActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list strategies")
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}

	dtos := make([]StrategyDTO, len(strategies))
	for i, st := range strategies {
		dtos[i] = toStrategyDTO(st)
	}
	return dtos, nil
}

// ResolveStrategyForOrder resolves, without side effects, which strategy
// would serve an order
func (s *OrderApplicationService) ResolveStrategyForOrder(ctx context.Context, query GetOrderQuery) (*StrategyDTO, error) {
	order, err := s.loadOrder(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}

	strategy, err := s.resolveStrategy(ctx, order, "")
	if err != nil {
		return nil, err
	}
	dto := toStrategyDTO(strategy)
	return &dto, nil
}

func (s *OrderApplicationService) transition(ctx context.Context, orderID, action string, fn func(*domain.Order) error) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := fn(order); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.WithError(err).Error("Failed to save order", "orderId", orderID, "action", action)
		return nil, mapDomainError(err)
	}
	s.publishEvents(ctx, order)

	s.logger.Info("Order transition applied", "orderId", orderID, "action", action, "status", order.Status)
	dto := toOrderDTO(order)
	return &dto, nil
}

func (s *OrderApplicationService) loadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get order", "orderId", orderID)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrNotFoundWithID("order", orderID)
	}
	return order, nil
}

func (s *OrderApplicationService) resolveStrategy(ctx context.Context, order *domain.Order, strategyID string) (*domain.AllocationStrategy, error) {
	if strategyID != "" {
		strategy, err := s.strategies.FindByID(ctx, strategyID)
		if err != nil {
			s.logger.WithError(err).Error("Failed to get strategy", "strategyId", strategyID)
			return nil, fmt.Errorf("failed to get strategy: %w", err)
		}
		if strategy == nil {
			return nil, apperrors.ErrNotFoundWithID("strategy", strategyID)
		}
		if !strategy.Active {
			return nil, apperrors.ErrPreconditionFailed(fmt.Sprintf("strategy %s is not active", strategyID))
		}
		return strategy, nil
	}

	strategies, err := s.strategies.FindActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list strategies")
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}

	strategy, err := domain.ResolveStrategy(order, strategies)
	if err != nil {
		if errors.Is(err, domain.ErrNoStrategyFound) {
			return nil, apperrors.ErrNoStrategyFound(order.OrderID)
		}
		return nil, err
	}
	return strategy, nil
}

// publishEvents publishes the order's pending domain events. Publication is
// best-effort: a broker failure is logged but never fails the command.
func (s *OrderApplicationService) publishEvents(ctx context.Context, order *domain.Order) {
	events := order.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish order events", "orderId", order.OrderID)
	}
	order.ClearDomainEvents()
}
