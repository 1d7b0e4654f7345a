package application

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/wms-platform/fulfillment-service/pkg/errors"
	"github.com/wms-platform/fulfillment-service/pkg/logging"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// WaveExecutionService drives a committed wave through allocation, release
// and completion
type WaveExecutionService struct {
	waves        domain.WaveRepository
	orders       domain.OrderRepository
	pickTasks    domain.PickTaskRepository
	orderService *OrderApplicationService
	publisher    domain.EventPublisher
	logger       *logging.Logger
}

// NewWaveExecutionService creates a new WaveExecutionService
func NewWaveExecutionService(
	waves domain.WaveRepository,
	orders domain.OrderRepository,
	pickTasks domain.PickTaskRepository,
	orderService *OrderApplicationService,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *WaveExecutionService {
	return &WaveExecutionService{
		waves:        waves,
		orders:       orders,
		pickTasks:    pickTasks,
		orderService: orderService,
		publisher:    publisher,
		logger:       logger,
	}
}

// AllocateWave allocates every member order that has not been allocated yet.
// Per-order shortage is not a failure: short orders land in planned like any
// other and must be resolved before release. A member whose allocation fails
// outright stays unallocated and blocks the wave from moving to allocated.
func (s *WaveExecutionService) AllocateWave(ctx context.Context, cmd WaveTransitionCommand) (*WaveDTO, error) {
	wave, err := s.loadWave(ctx, cmd.WaveID)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]string, 0, len(wave.Orders))
	for _, wo := range wave.Orders {
		orderIDs = append(orderIDs, wo.OrderID)
	}
	orders, err := s.orders.FindByIDs(ctx, orderIDs)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load wave orders", "waveId", wave.WaveID)
		return nil, fmt.Errorf("failed to load wave orders: %w", err)
	}

	var unallocated []string
	for _, order := range orders {
		switch order.Status {
		case domain.StatusDraft, domain.StatusVerified:
		default:
			continue
		}
		allocCmd := AllocateOrderCommand{OrderID: order.OrderID, StrategyID: wave.StrategyID}
		if _, err := s.orderService.AllocateOrder(ctx, allocCmd); err != nil {
			unallocated = append(unallocated, order.OrderID)
			s.logger.WithError(err).Warn("Wave member allocation failed",
				"waveId", wave.WaveID, "orderId", order.OrderID)
		}
	}
	if len(unallocated) > 0 {
		return nil, apperrors.ErrPreconditionFailed(
			fmt.Sprintf("%d wave member(s) could not be allocated", len(unallocated))).
			WithDetail("orderIds", strings.Join(unallocated, ","))
	}

	if err := wave.MarkAllocated(); err != nil {
		return nil, mapDomainError(err)
	}
	if err := s.waves.Save(ctx, wave); err != nil {
		s.logger.WithError(err).Error("Failed to save wave", "waveId", wave.WaveID)
		return nil, mapDomainError(err)
	}
	s.publishWaveEvents(ctx, wave)

	s.logger.Info("Allocated wave", "waveId", wave.WaveID, "orders", len(orders))
	dto := toWaveDTO(wave)
	return &dto, nil
}

// ReleaseWave releases the wave and pushes its ready orders into picking.
// Orders still carrying an unaccepted shortage stay behind in planned, but a
// member that never reached allocation blocks the release outright.
func (s *WaveExecutionService) ReleaseWave(ctx context.Context, cmd WaveTransitionCommand) (*WaveDTO, error) {
	wave, err := s.loadWave(ctx, cmd.WaveID)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]string, 0, len(wave.Orders))
	for _, wo := range wave.Orders {
		orderIDs = append(orderIDs, wo.OrderID)
	}
	orders, err := s.orders.FindByIDs(ctx, orderIDs)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load wave orders", "waveId", wave.WaveID)
		return nil, fmt.Errorf("failed to load wave orders: %w", err)
	}
	for _, order := range orders {
		switch order.Status {
		case domain.StatusDraft, domain.StatusVerified:
			return nil, apperrors.ErrPreconditionFailed(
				fmt.Sprintf("order %s has not been allocated", order.OrderID))
		}
	}

	if err := wave.Release(); err != nil {
		return nil, mapDomainError(err)
	}

	released := 0
	for _, order := range orders {
		if order.Status == domain.StatusPlanned {
			if err := order.Release(); err != nil {
				s.logger.WithError(err).Warn("Order not releasable with wave",
					"waveId", wave.WaveID, "orderId", order.OrderID)
				continue
			}
		}
		if order.Status == domain.StatusReleased {
			if err := order.StartPicking(); err != nil {
				s.logger.WithError(err).Warn("Failed to start picking",
					"waveId", wave.WaveID, "orderId", order.OrderID)
				continue
			}
		}
		if err := s.orders.Save(ctx, order); err != nil {
			s.logger.WithError(err).Warn("Failed to save released order",
				"waveId", wave.WaveID, "orderId", order.OrderID)
			continue
		}
		s.publishOrderEvents(ctx, order)
		released++
	}

	if err := s.waves.Save(ctx, wave); err != nil {
		s.logger.WithError(err).Error("Failed to save wave", "waveId", wave.WaveID)
		return nil, mapDomainError(err)
	}
	s.publishWaveEvents(ctx, wave)

	s.logger.Info("Released wave", "waveId", wave.WaveID, "releasedOrders", released)
	dto := toWaveDTO(wave)
	return &dto, nil
}

// CompleteWave closes a released wave. A completed wave is never reopened.
func (s *WaveExecutionService) CompleteWave(ctx context.Context, cmd WaveTransitionCommand) (*WaveDTO, error) {
	wave, err := s.loadWave(ctx, cmd.WaveID)
	if err != nil {
		return nil, err
	}

	if err := wave.Complete(); err != nil {
		return nil, mapDomainError(err)
	}
	if err := s.waves.Save(ctx, wave); err != nil {
		s.logger.WithError(err).Error("Failed to save wave", "waveId", wave.WaveID)
		return nil, mapDomainError(err)
	}
	s.publishWaveEvents(ctx, wave)

	s.logger.Info("Completed wave", "waveId", wave.WaveID)
	dto := toWaveDTO(wave)
	return &dto, nil
}

// CancelWave cancels a wave and unassigns its member orders so they become
// eligible for a later wave
func (s *WaveExecutionService) CancelWave(ctx context.Context, cmd CancelWaveCommand) (*WaveDTO, error) {
	wave, err := s.loadWave(ctx, cmd.WaveID)
	if err != nil {
		return nil, err
	}

	if err := wave.Cancel(cmd.Reason); err != nil {
		return nil, mapDomainError(err)
	}

	orderIDs := make([]string, 0, len(wave.Orders))
	for _, wo := range wave.Orders {
		orderIDs = append(orderIDs, wo.OrderID)
	}
	orders, err := s.orders.FindByIDs(ctx, orderIDs)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load wave orders", "waveId", wave.WaveID)
		return nil, fmt.Errorf("failed to load wave orders: %w", err)
	}
	for _, order := range orders {
		if err := order.ClearWave(); err != nil {
			continue
		}
		if err := s.orders.Save(ctx, order); err != nil {
			s.logger.WithError(err).Warn("Failed to unassign order from wave",
				"waveId", wave.WaveID, "orderId", order.OrderID)
		}
	}

	if err := s.waves.Save(ctx, wave); err != nil {
		s.logger.WithError(err).Error("Failed to save wave", "waveId", wave.WaveID)
		return nil, mapDomainError(err)
	}
	s.publishWaveEvents(ctx, wave)

	s.logger.Info("Cancelled wave", "waveId", wave.WaveID, "reason", cmd.Reason)
	dto := toWaveDTO(wave)
	return &dto, nil
}

// AddOrdersToWave adds orders to a wave still in planning, best-effort
func (s *WaveExecutionService) AddOrdersToWave(ctx context.Context, cmd AddOrdersToWaveCommand) (*CommitWaveResultDTO, error) {
	wave, err := s.loadWave(ctx, cmd.WaveID)
	if err != nil {
		return nil, err
	}
	if len(cmd.OrderIDs) == 0 {
		return nil, apperrors.ErrValidation("order id list must not be empty")
	}

	orders, err := s.orders.FindByIDs(ctx, cmd.OrderIDs)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load orders", "waveId", wave.WaveID)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		byID[o.OrderID] = o
	}

	result := &CommitWaveResultDTO{Requested: len(cmd.OrderIDs)}
	added := 0
	for _, orderID := range cmd.OrderIDs {
		order, ok := byID[orderID]
		if !ok {
			result.Skipped = append(result.Skipped, BulkItemFailureDTO{
				OrderID: orderID,
				Code:    apperrors.CodeNotFound,
				Message: "order not found",
			})
			continue
		}
		if err := order.AssignToWave(wave.WaveID); err != nil {
			result.Skipped = append(result.Skipped, BulkItemFailureDTO{
				OrderID: orderID,
				Code:    apperrors.CodeConflict,
				Message: err.Error(),
			})
			continue
		}
		if err := wave.AddOrder(summarizeOrder(order)); err != nil {
			result.Skipped = append(result.Skipped, BulkItemFailureDTO{
				OrderID: orderID,
				Code:    apperrors.CodeConflict,
				Message: err.Error(),
			})
			continue
		}
		if err := s.orders.Save(ctx, order); err != nil {
			s.logger.WithError(err).Warn("Failed to save wave assignment",
				"waveId", wave.WaveID, "orderId", orderID)
			continue
		}
		s.publishOrderEvents(ctx, order)
		added++
	}

	if added > 0 {
		if err := s.waves.Save(ctx, wave); err != nil {
			s.logger.WithError(err).Error("Failed to save wave", "waveId", wave.WaveID)
			return nil, mapDomainError(err)
		}
		s.publishWaveEvents(ctx, wave)
	}

	result.Wave = toWaveDTO(wave)
	result.Bundled = added

	s.logger.Info("Added orders to wave", "waveId", wave.WaveID, "added", added, "skipped", len(result.Skipped))
	return result, nil
}

// GetWave retrieves a wave together with its pick tasks
func (s *WaveExecutionService) GetWave(ctx context.Context, query GetWaveQuery) (*WaveDetailDTO, error) {
	wave, err := s.loadWave(ctx, query.WaveID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.pickTasks.FindByWaveID(ctx, wave.WaveID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load pick tasks", "waveId", wave.WaveID)
		return nil, fmt.Errorf("failed to load pick tasks: %w", err)
	}

	detail := &WaveDetailDTO{Wave: toWaveDTO(wave), PickTasks: make([]PickTaskDTO, len(tasks))}
	for i, t := range tasks {
		detail.PickTasks[i] = toPickTaskDTO(t)
	}
	return detail, nil
}

// ListWaves lists waves, filtered by status when one is given
func (s *WaveExecutionService) ListWaves(ctx context.Context, query ListWavesQuery) ([]WaveDTO, error) {
	var (
		waves []*domain.Wave
		err   error
	)
	if query.Status != "" {
		waves, err = s.waves.FindByStatus(ctx, domain.WaveStatus(query.Status))
	} else {
		waves, err = s.waves.FindActive(ctx)
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to list waves", "status", query.Status)
		return nil, fmt.Errorf("failed to list waves: %w", err)
	}

	dtos := make([]WaveDTO, len(waves))
	for i, w := range waves {
		dtos[i] = toWaveDTO(w)
	}
	return dtos, nil
}

func (s *WaveExecutionService) loadWave(ctx context.Context, waveID string) (*domain.Wave, error) {
	wave, err := s.waves.FindByID(ctx, waveID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get wave", "waveId", waveID)
		return nil, fmt.Errorf("failed to get wave: %w", err)
	}
	if wave == nil {
		return nil, apperrors.ErrNotFoundWithID("wave", waveID)
	}
	return wave, nil
}

func (s *WaveExecutionService) publishOrderEvents(ctx context.Context, order *domain.Order) {
	events := order.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish order events", "orderId", order.OrderID)
	}
	order.ClearDomainEvents()
}

func (s *WaveExecutionService) publishWaveEvents(ctx context.Context, wave *domain.Wave) {
	events := wave.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish wave events", "waveId", wave.WaveID)
	}
	wave.ClearDomainEvents()
}
