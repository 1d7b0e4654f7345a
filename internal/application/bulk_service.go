package application

import (
	"context"

	apperrors "github.com/wms-platform/fulfillment-service/pkg/errors"
	"github.com/wms-platform/fulfillment-service/pkg/logging"
	"github.com/wms-platform/fulfillment-service/pkg/metrics"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

const (
	bulkOpAllocate = "allocate"
	bulkOpRelease  = "release"
	bulkOpCancel   = "cancel"
)

// BulkOperationService applies one operation across many orders with
// best-effort semantics: each item is processed in isolation and one failure
// never aborts the rest. The result tally always satisfies
// success+failure+skipped == requested.
type BulkOperationService struct {
	orders       domain.OrderRepository
	orderService *OrderApplicationService
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewBulkOperationService creates a new BulkOperationService
func NewBulkOperationService(
	orders domain.OrderRepository,
	orderService *OrderApplicationService,
	m *metrics.Metrics,
	logger *logging.Logger,
) *BulkOperationService {
	return &BulkOperationService{
		orders:       orders,
		orderService: orderService,
		metrics:      m,
		logger:       logger,
	}
}

// BulkAllocate allocates each draft order in the list. Orders past draft are
// skipped rather than failed, and so are orders no active strategy matches:
// an unmatched order is excluded from the run, not counted against it.
func (s *BulkOperationService) BulkAllocate(ctx context.Context, cmd BulkOperationCommand) (*BulkResultDTO, error) {
	return s.run(ctx, bulkOpAllocate, cmd.OrderIDs, func(ctx context.Context, order *domain.Order) (bool, error) {
		if order.Status != domain.StatusDraft {
			return true, nil
		}
		_, err := s.orderService.AllocateOrder(ctx, AllocateOrderCommand{OrderID: order.OrderID})
		if apperrors.IsCode(err, apperrors.CodeNoStrategyFound) {
			return true, nil
		}
		return false, err
	})
}

// BulkRelease releases each fully allocated order in the list
func (s *BulkOperationService) BulkRelease(ctx context.Context, cmd BulkOperationCommand) (*BulkResultDTO, error) {
	return s.run(ctx, bulkOpRelease, cmd.OrderIDs, func(ctx context.Context, order *domain.Order) (bool, error) {
		switch order.Status {
		case domain.StatusReleased, domain.StatusPicking, domain.StatusShipped:
			return true, nil
		}
		_, err := s.orderService.ReleaseOrder(ctx, OrderTransitionCommand{OrderID: order.OrderID})
		return false, err
	})
}

// BulkCancel cancels each order in the list. Already cancelled orders are
// skipped, matching the single-order idempotency rule.
func (s *BulkOperationService) BulkCancel(ctx context.Context, cmd BulkOperationCommand) (*BulkResultDTO, error) {
	return s.run(ctx, bulkOpCancel, cmd.OrderIDs, func(ctx context.Context, order *domain.Order) (bool, error) {
		if order.Status == domain.StatusCancelled {
			return true, nil
		}
		_, err := s.orderService.CancelOrder(ctx, CancelOrderCommand{OrderID: order.OrderID, Reason: "bulk cancel"})
		return false, err
	})
}

// run drives one bulk operation. The item function reports (skipped, err);
// any other outcome is a success.
func (s *BulkOperationService) run(
	ctx context.Context,
	operation string,
	orderIDs []string,
	apply func(context.Context, *domain.Order) (bool, error),
) (*BulkResultDTO, error) {
	if len(orderIDs) == 0 {
		return nil, apperrors.ErrValidation("order id list must not be empty")
	}

	result := &BulkResultDTO{Operation: operation, Requested: len(orderIDs)}
	seen := make(map[string]bool, len(orderIDs))

	for _, orderID := range orderIDs {
		if err := ctx.Err(); err != nil {
			result.Failure++
			result.Failures = append(result.Failures, BulkItemFailureDTO{
				OrderID: orderID,
				Code:    apperrors.CodeServiceUnavailable,
				Message: "operation interrupted: " + err.Error(),
			})
			s.metrics.ObserveBulkItem(operation, "failure")
			continue
		}
		if seen[orderID] {
			result.Skipped++
			result.SkippedID = append(result.SkippedID, orderID)
			s.metrics.ObserveBulkItem(operation, "skipped")
			continue
		}
		seen[orderID] = true

		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			s.recordFailure(result, operation, orderID, apperrors.ErrInternal(err.Error()))
			continue
		}
		if order == nil {
			s.recordFailure(result, operation, orderID, apperrors.ErrNotFoundWithID("order", orderID))
			continue
		}

		skipped, err := apply(ctx, order)
		switch {
		case skipped:
			result.Skipped++
			result.SkippedID = append(result.SkippedID, orderID)
			s.metrics.ObserveBulkItem(operation, "skipped")
		case err != nil:
			s.recordFailure(result, operation, orderID, err)
		default:
			result.Success++
			s.metrics.ObserveBulkItem(operation, "success")
		}
	}

	s.logger.Info("Bulk operation finished",
		"operation", operation,
		"requested", result.Requested,
		"success", result.Success,
		"failure", result.Failure,
		"skipped", result.Skipped)
	return result, nil
}

func (s *BulkOperationService) recordFailure(result *BulkResultDTO, operation, orderID string, err error) {
	appErr := apperrors.FromError(err)
	result.Failure++
	result.Failures = append(result.Failures, BulkItemFailureDTO{
		OrderID: orderID,
		Code:    appErr.Code,
		Message: appErr.Message,
	})
	s.metrics.ObserveBulkItem(operation, "failure")
	s.logger.WithError(err).Warn("Bulk item failed", "operation", operation, "orderId", orderID)
}
