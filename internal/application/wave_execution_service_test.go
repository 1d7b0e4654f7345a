package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wms-platform/fulfillment-service/pkg/errors"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

func newExecutionService(mocks *serviceMocks) *WaveExecutionService {
	return NewWaveExecutionService(mocks.waves, mocks.orders, mocks.pickTasks, mocks.orderService(), mocks.publisher, newTestLogger())
}

func TestAllocateWave(t *testing.T) {
	t.Run("Members are allocated with the wave strategy", func(t *testing.T) {
		mocks := newServiceMocks()
		member := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", member)
		wave.StrategyID = "STRAT-WAVE"
		strategy := newSalesStrategy("STRAT-WAVE", 10)

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-001"}).
			Return([]*domain.Order{member}, nil)
		mocks.orders.On("FindByID", mock.Anything, "ORD-001").Return(member, nil)
		mocks.strategies.On("FindByID", mock.Anything, "STRAT-WAVE").Return(strategy, nil)
		mocks.engine.On("Allocate", mock.Anything, member, strategy).
			Return(&domain.AllocationResult{Lines: fullyAllocated()}, nil)
		mocks.orders.On("Save", mock.Anything, member).Return(nil)
		mocks.waves.On("Save", mock.Anything, wave).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		service := newExecutionService(mocks)

		dto, err := service.AllocateWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.NoError(t, err)
		assert.Equal(t, "allocated", dto.Status)
		assert.Equal(t, domain.StatusPlanned, member.Status)
		assert.Equal(t, "STRAT-WAVE", member.StrategyID)
		mocks.assertExpectations(t)
	})

	t.Run("Member allocation failure blocks the wave", func(t *testing.T) {
		mocks := newServiceMocks()
		member := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", member)
		wave.StrategyID = "STRAT-WAVE"
		strategy := newSalesStrategy("STRAT-WAVE", 10)

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-001"}).
			Return([]*domain.Order{member}, nil)
		mocks.orders.On("FindByID", mock.Anything, "ORD-001").Return(member, nil)
		mocks.strategies.On("FindByID", mock.Anything, "STRAT-WAVE").Return(strategy, nil)
		mocks.engine.On("Allocate", mock.Anything, member, strategy).Return(nil, assert.AnError)
		service := newExecutionService(mocks)

		dto, err := service.AllocateWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.Error(t, err)
		assert.Nil(t, dto)
		assert.True(t, apperrors.IsCode(err, apperrors.CodePreconditionFailed))
		assert.Equal(t, domain.WaveStatusPlanning, wave.Status)
		assert.Equal(t, domain.StatusVerified, member.Status)
		mocks.waves.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Already planned members are not re-allocated", func(t *testing.T) {
		mocks := newServiceMocks()
		member := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", member)
		require.NoError(t, member.ApplyAllocation("STRAT-01", fullyAllocated()))
		member.ClearDomainEvents()

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-001"}).
			Return([]*domain.Order{member}, nil)
		mocks.waves.On("Save", mock.Anything, wave).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		service := newExecutionService(mocks)

		_, err := service.AllocateWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.NoError(t, err)
		mocks.engine.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown wave", func(t *testing.T) {
		mocks := newServiceMocks()
		mocks.waves.On("FindByID", mock.Anything, "WV-404").Return(nil, nil)
		service := newExecutionService(mocks)

		_, err := service.AllocateWave(context.Background(), WaveTransitionCommand{WaveID: "WV-404"})

		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	})
}

func TestReleaseWave(t *testing.T) {
	t.Run("Ready members go to picking, short members stay planned", func(t *testing.T) {
		mocks := newServiceMocks()
		ready := newVerifiedOrder(t, "ORD-001")
		short := newVerifiedOrder(t, "ORD-002")
		wave := newPlanningWave(t, "WV-001", ready, short)
		require.NoError(t, ready.ApplyAllocation("STRAT-01", fullyAllocated()))
		require.NoError(t, short.ApplyAllocation("STRAT-01", shortAllocated()))
		ready.ClearDomainEvents()
		short.ClearDomainEvents()
		require.NoError(t, wave.MarkAllocated())
		wave.ClearDomainEvents()

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-001", "ORD-002"}).
			Return([]*domain.Order{ready, short}, nil)
		mocks.orders.On("Save", mock.Anything, ready).Return(nil)
		mocks.waves.On("Save", mock.Anything, wave).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		service := newExecutionService(mocks)

		dto, err := service.ReleaseWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.NoError(t, err)
		assert.Equal(t, "released", dto.Status)
		assert.Equal(t, domain.StatusPicking, ready.Status)
		assert.Equal(t, domain.StatusPlanned, short.Status, "unaccepted shortage stays behind")
		mocks.assertExpectations(t)
	})

	t.Run("Unallocated member blocks release", func(t *testing.T) {
		mocks := newServiceMocks()
		member := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", member)
		require.NoError(t, wave.MarkAllocated())
		wave.ClearDomainEvents()

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-001"}).
			Return([]*domain.Order{member}, nil)
		service := newExecutionService(mocks)

		dto, err := service.ReleaseWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.Error(t, err)
		assert.Nil(t, dto)
		assert.True(t, apperrors.IsCode(err, apperrors.CodePreconditionFailed))
		assert.Equal(t, domain.WaveStatusAllocated, wave.Status)
		assert.Equal(t, domain.StatusVerified, member.Status)
		mocks.waves.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Planning wave cannot be released", func(t *testing.T) {
		mocks := newServiceMocks()
		member := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", member)
		require.NoError(t, member.ApplyAllocation("STRAT-01", fullyAllocated()))
		member.ClearDomainEvents()

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-001"}).
			Return([]*domain.Order{member}, nil)
		service := newExecutionService(mocks)

		_, err := service.ReleaseWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
		mocks.waves.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCompleteWave(t *testing.T) {
	t.Run("Released wave completes", func(t *testing.T) {
		mocks := newServiceMocks()
		member := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", member)
		require.NoError(t, wave.MarkAllocated())
		require.NoError(t, wave.Release())
		wave.ClearDomainEvents()

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.waves.On("Save", mock.Anything, wave).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		service := newExecutionService(mocks)

		dto, err := service.CompleteWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.NoError(t, err)
		assert.Equal(t, "completed", dto.Status)
	})

	t.Run("Allocated wave cannot complete", func(t *testing.T) {
		mocks := newServiceMocks()
		wave := newPlanningWave(t, "WV-001", newVerifiedOrder(t, "ORD-001"))
		require.NoError(t, wave.MarkAllocated())
		wave.ClearDomainEvents()

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		service := newExecutionService(mocks)

		_, err := service.CompleteWave(context.Background(), WaveTransitionCommand{WaveID: "WV-001"})

		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	})
}

func TestCancelWave(t *testing.T) {
	t.Run("Members become eligible again", func(t *testing.T) {
		mocks := newServiceMocks()
		member := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", member)

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-001"}).
			Return([]*domain.Order{member}, nil)
		mocks.orders.On("Save", mock.Anything, member).Return(nil)
		mocks.waves.On("Save", mock.Anything, wave).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		service := newExecutionService(mocks)

		dto, err := service.CancelWave(context.Background(), CancelWaveCommand{WaveID: "WV-001", Reason: "replan"})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", dto.Status)
		assert.Empty(t, member.WaveID)
		assert.True(t, member.IsWaveEligible())
	})

	t.Run("Completed wave cannot be cancelled", func(t *testing.T) {
		mocks := newServiceMocks()
		wave := newPlanningWave(t, "WV-001", newVerifiedOrder(t, "ORD-001"))
		require.NoError(t, wave.MarkAllocated())
		require.NoError(t, wave.Release())
		require.NoError(t, wave.Complete())
		wave.ClearDomainEvents()

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		service := newExecutionService(mocks)

		_, err := service.CancelWave(context.Background(), CancelWaveCommand{WaveID: "WV-001", Reason: "too late"})

		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	})
}

func TestAddOrdersToWave(t *testing.T) {
	t.Run("Eligible orders join, ineligible are skipped", func(t *testing.T) {
		mocks := newServiceMocks()
		existing := newVerifiedOrder(t, "ORD-001")
		wave := newPlanningWave(t, "WV-001", existing)
		joining := newVerifiedOrder(t, "ORD-002")
		planned := newPlannedOrder(t, "ORD-003", fullyAllocated())

		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-002", "ORD-003"}).
			Return([]*domain.Order{joining, planned}, nil)
		mocks.orders.On("Save", mock.Anything, joining).Return(nil)
		mocks.waves.On("Save", mock.Anything, wave).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		service := newExecutionService(mocks)

		result, err := service.AddOrdersToWave(context.Background(), AddOrdersToWaveCommand{
			WaveID:   "WV-001",
			OrderIDs: []string{"ORD-002", "ORD-003"},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Bundled)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "ORD-003", result.Skipped[0].OrderID)
		assert.True(t, wave.HasOrder("ORD-002"))
		assert.Equal(t, "WV-001", joining.WaveID)
	})

	t.Run("Nothing added leaves the wave unsaved", func(t *testing.T) {
		mocks := newServiceMocks()
		wave := newPlanningWave(t, "WV-001", newVerifiedOrder(t, "ORD-001"))
		mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
		mocks.orders.On("FindByIDs", mock.Anything, []string{"ORD-404"}).
			Return([]*domain.Order{}, nil)
		service := newExecutionService(mocks)

		result, err := service.AddOrdersToWave(context.Background(), AddOrdersToWaveCommand{
			WaveID:   "WV-001",
			OrderIDs: []string{"ORD-404"},
		})

		require.NoError(t, err)
		assert.Zero(t, result.Bundled)
		require.Len(t, result.Skipped, 1)
		mocks.waves.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestGetWave(t *testing.T) {
	mocks := newServiceMocks()
	wave := newPlanningWave(t, "WV-001", newVerifiedOrder(t, "ORD-001"))
	tasks := []domain.PickTask{
		{TaskID: "PT-001", WaveID: "WV-001", OrderID: "ORD-001", SKU: "SKU-001", LocationID: "A-01-01", QtyToPick: 10},
	}
	mocks.waves.On("FindByID", mock.Anything, "WV-001").Return(wave, nil)
	mocks.pickTasks.On("FindByWaveID", mock.Anything, "WV-001").Return(tasks, nil)
	service := newExecutionService(mocks)

	detail, err := service.GetWave(context.Background(), GetWaveQuery{WaveID: "WV-001"})

	require.NoError(t, err)
	assert.Equal(t, "WV-001", detail.Wave.WaveID)
	require.Len(t, detail.PickTasks, 1)
	assert.Equal(t, "PT-001", detail.PickTasks[0].TaskID)
}

func TestListWaves(t *testing.T) {
	t.Run("Status filter uses FindByStatus", func(t *testing.T) {
		mocks := newServiceMocks()
		wave := newPlanningWave(t, "WV-001", newVerifiedOrder(t, "ORD-001"))
		mocks.waves.On("FindByStatus", mock.Anything, domain.WaveStatusPlanning).
			Return([]*domain.Wave{wave}, nil)
		service := newExecutionService(mocks)

		dtos, err := service.ListWaves(context.Background(), ListWavesQuery{Status: "planning"})

		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, "WV-001", dtos[0].WaveID)
	})

	t.Run("No filter lists active waves", func(t *testing.T) {
		mocks := newServiceMocks()
		mocks.waves.On("FindActive", mock.Anything).Return([]*domain.Wave{}, nil)
		service := newExecutionService(mocks)

		dtos, err := service.ListWaves(context.Background(), ListWavesQuery{})

		require.NoError(t, err)
		assert.Empty(t, dtos)
	})
}
