package occupancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
	apperrors "github.com/meditrack/ward-api/pkg/errors"
)

// Enforcer decides whether an admission or transfer may proceed. It is
// read-only; callers must consult it before issuing any write.
type Enforcer struct {
	careUnits repository.CareUnitRepository
	beds      repository.BedRepository
}

func NewEnforcer(careUnits repository.CareUnitRepository, beds repository.BedRepository) *Enforcer {
	return &Enforcer{
		careUnits: careUnits,
		beds:      beds,
	}
}

// ValidateTarget resolves the requested (care unit, bed) pair. The bed
// must exist within the given care unit, not merely exist.
func (e *Enforcer) ValidateTarget(ctx context.Context, careUnitID, bedID uuid.UUID) (*model.Bed, error) {
	if _, err := e.careUnits.Get(ctx, careUnitID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("care unit")
		}
		return nil, fmt.Errorf("failed to resolve care unit: %w", err)
	}

	bed, err := e.beds.GetInCareUnit(ctx, bedID, careUnitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("bed in this care unit")
		}
		return nil, fmt.Errorf("failed to resolve bed: %w", err)
	}
	return bed, nil
}

// CheckAvailability fails with Conflict when the target bed is
// occupied. Moving a patient to the bed they already hold is a no-op
// for occupancy purposes and succeeds trivially.
func (e *Enforcer) CheckAvailability(targetBed *model.Bed, currentBedID uuid.UUID) error {
	if targetBed.ID == currentBedID {
		return nil
	}
	if targetBed.IsOccupied {
		return apperrors.NewConflict("Selected bed is already occupied")
	}
	return nil
}
