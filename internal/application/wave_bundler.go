package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/wms-platform/fulfillment-service/pkg/errors"
	"github.com/wms-platform/fulfillment-service/pkg/logging"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// WaveBundler bundles verified orders into waves. Simulation and commit are
// deliberately separate: simulate is a pure read, commit operates on the
// explicit order-id list the caller reviewed.
type WaveBundler struct {
	orders     domain.OrderRepository
	waves      domain.WaveRepository
	strategies domain.StrategyRepository
	publisher  domain.EventPublisher
	logger     *logging.Logger
}

// NewWaveBundler creates a new WaveBundler
func NewWaveBundler(
	orders domain.OrderRepository,
	waves domain.WaveRepository,
	strategies domain.StrategyRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *WaveBundler {
	return &WaveBundler{
		orders:     orders,
		waves:      waves,
		strategies: strategies,
		publisher:  publisher,
		logger:     logger,
	}
}

// SimulateWave previews the order set a commit with the same criteria would
// capture. It writes nothing and emits no events.
func (b *WaveBundler) SimulateWave(ctx context.Context, cmd SimulateWaveCommand) (*WaveSimulationDTO, error) {
	waveType := domain.WaveType(cmd.WaveType)
	if !waveType.IsValid() {
		return nil, apperrors.ErrValidation(fmt.Sprintf("invalid wave type: %s", cmd.WaveType))
	}

	candidates, err := b.orders.FindWaveCandidates(ctx, cmd.Criteria)
	if err != nil {
		b.logger.WithError(err).Error("Failed to find wave candidates", "waveType", cmd.WaveType)
		return nil, fmt.Errorf("failed to find wave candidates: %w", err)
	}

	sim := &WaveSimulationDTO{
		WaveType:    cmd.WaveType,
		Criteria:    toCriteriaDTO(cmd.Criteria),
		Orders:      []WaveOrderDTO{},
		SimulatedAt: time.Now().UTC(),
	}
	if policy, err := waveType.DefaultPickingPolicy(); err == nil {
		sim.PickingPolicy = policy
		// Echo the first active strategy matching the wave type's picking
		// policy. Best-effort: the preview is still useful without it.
		if strategies, err := b.strategies.FindActive(ctx); err != nil {
			b.logger.WithError(err).Warn("Failed to resolve default strategy", "waveType", cmd.WaveType)
		} else {
			for _, strategy := range strategies {
				if strategy.Rules.PickingPolicy == policy {
					sim.StrategyID = strategy.StrategyID
					sim.StrategyName = strategy.Name
					break
				}
			}
		}
	}

	for _, order := range candidates {
		if !order.IsWaveEligible() {
			continue
		}
		summary := summarizeOrder(order)
		sim.Orders = append(sim.Orders, toWaveOrderDTO(summary))
		sim.TotalLines += summary.LineCount
		sim.TotalQty += summary.TotalQty
	}
	sim.OrderCount = len(sim.Orders)

	b.logger.Info("Simulated wave",
		"waveType", cmd.WaveType,
		"orderCount", sim.OrderCount,
		"totalQty", sim.TotalQty)
	return sim, nil
}

// CommitWave creates a wave over the supplied order ids. The criteria are
// persisted for audit only; membership comes from the id list. Orders that
// are no longer eligible are skipped, never failing the whole commit, but a
// commit that bundles nothing is rejected.
func (b *WaveBundler) CommitWave(ctx context.Context, cmd CommitWaveCommand) (*CommitWaveResultDTO, error) {
	waveType := domain.WaveType(cmd.WaveType)
	if !waveType.IsValid() {
		return nil, apperrors.ErrValidation(fmt.Sprintf("invalid wave type: %s", cmd.WaveType))
	}
	if len(cmd.OrderIDs) == 0 {
		return nil, apperrors.ErrValidation("order id list must not be empty")
	}

	strategy, err := b.waveStrategy(ctx, waveType, cmd.StrategyID)
	if err != nil {
		return nil, err
	}

	waveID := generateWaveID(waveType)
	waveNumber := cmd.WaveName
	if waveNumber == "" {
		waveNumber = waveID
	}
	wave, err := domain.NewWave(waveID, waveNumber, waveType, cmd.Criteria)
	if err != nil {
		return nil, mapDomainError(err)
	}
	if strategy != nil {
		wave.StrategyID = strategy.StrategyID
		wave.StrategyName = strategy.Name
	}

	orders, err := b.orders.FindByIDs(ctx, cmd.OrderIDs)
	if err != nil {
		b.logger.WithError(err).Error("Failed to load orders for wave commit", "waveId", waveID)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		byID[o.OrderID] = o
	}

	result := &CommitWaveResultDTO{Requested: len(cmd.OrderIDs)}
	var bundled []*domain.Order
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
		if err := order.AssignToWave(waveID); err != nil {
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
		bundled = append(bundled, order)
	}

	if len(bundled) == 0 {
		return nil, apperrors.ErrValidation("no eligible orders to bundle").
			WithDetail("requested", strconv.Itoa(len(cmd.OrderIDs)))
	}

	if err := b.waves.Save(ctx, wave); err != nil {
		b.logger.WithError(err).Error("Failed to save wave", "waveId", waveID)
		return nil, mapDomainError(err)
	}

	for _, order := range bundled {
		if err := b.orders.Save(ctx, order); err != nil {
			// The wave keeps its membership record; the order assignment is
			// retried on the next allocation attempt for that order.
			b.logger.WithError(err).Warn("Failed to save wave assignment", "orderId", order.OrderID, "waveId", waveID)
			continue
		}
		b.publishOrderEvents(ctx, order)
	}
	b.publishWaveEvents(ctx, wave)

	result.Wave = toWaveDTO(wave)
	result.Bundled = wave.OrderCount()

	b.logger.Info("Committed wave",
		"waveId", waveID,
		"waveType", cmd.WaveType,
		"bundled", result.Bundled,
		"skipped", len(result.Skipped))
	return result, nil
}

// waveStrategy resolves the strategy recorded on a new wave. Custom waves
// must name one explicitly; typed waves may omit it.
func (b *WaveBundler) waveStrategy(ctx context.Context, waveType domain.WaveType, strategyID string) (*domain.AllocationStrategy, error) {
	if strategyID == "" {
		if waveType == domain.WaveTypeCustom {
			return nil, apperrors.ErrValidation("custom waves require a strategy id")
		}
		return nil, nil
	}

	strategy, err := b.strategies.FindByID(ctx, strategyID)
	if err != nil {
		b.logger.WithError(err).Error("Failed to get strategy", "strategyId", strategyID)
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}
	if strategy == nil {
		return nil, apperrors.ErrNotFoundWithID("strategy", strategyID)
	}
	return strategy, nil
}

func (b *WaveBundler) publishOrderEvents(ctx context.Context, order *domain.Order) {
	events := order.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := b.publisher.PublishAll(ctx, events); err != nil {
		b.logger.WithError(err).Warn("Failed to publish order events", "orderId", order.OrderID)
	}
	order.ClearDomainEvents()
}

func (b *WaveBundler) publishWaveEvents(ctx context.Context, wave *domain.Wave) {
	events := wave.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := b.publisher.PublishAll(ctx, events); err != nil {
		b.logger.WithError(err).Warn("Failed to publish wave events", "waveId", wave.WaveID)
	}
	wave.ClearDomainEvents()
}

// generateWaveID generates a unique wave ID
func generateWaveID(waveType domain.WaveType) string {
	prefix := "WV"
	switch waveType {
	case domain.WaveTypeEcommerceDaily:
		prefix = "WV-ECD"
	case domain.WaveTypeEcommerceExpress:
		prefix = "WV-ECX"
	case domain.WaveTypeB2BUrgent:
		prefix = "WV-B2B"
	case domain.WaveTypeWholesale:
		prefix = "WV-WHL"
	case domain.WaveTypeCustom:
		prefix = "WV-CST"
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), uuid.New().String()[:8])
}
