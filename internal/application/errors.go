package application

import (
	"errors"

	apperrors "github.com/wms-platform/fulfillment-service/pkg/errors"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// mapDomainError translates domain sentinel errors into transport-facing
// AppErrors. Unknown errors pass through unchanged so callers can wrap them.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConcurrentModification):
		return apperrors.ErrPreconditionFailed(err.Error())
	case errors.Is(err, domain.ErrNoStrategyFound):
		return err // callers attach the order id
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderCancelled),
		errors.Is(err, domain.ErrOrderShipped),
		errors.Is(err, domain.ErrShortageBlocksRelease),
		errors.Is(err, domain.ErrNoShortageToAccept),
		errors.Is(err, domain.ErrOrderAlreadyWaved),
		errors.Is(err, domain.ErrOrderNotWaved),
		errors.Is(err, domain.ErrWaveNotPlanning),
		errors.Is(err, domain.ErrWaveNotAllocated),
		errors.Is(err, domain.ErrWaveNotReleased),
		errors.Is(err, domain.ErrWaveClosed),
		errors.Is(err, domain.ErrOrderAlreadyInWave):
		return apperrors.ErrConflict(err.Error())
	case errors.Is(err, domain.ErrNoLines),
		errors.Is(err, domain.ErrInvalidOrderType),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidWaveType),
		errors.Is(err, domain.ErrWaveEmpty),
		errors.Is(err, domain.ErrCustomNeedsNoDefault),
		errors.Is(err, domain.ErrOverAllocation),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrQuantityRegression):
		return apperrors.ErrValidation(err.Error())
	default:
		return err
	}
}
