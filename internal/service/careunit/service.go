package careunit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
	apperrors "github.com/meditrack/ward-api/pkg/errors"
	"github.com/meditrack/ward-api/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateCareUnitRequest, actorID uuid.UUID) (*model.CareUnit, error)
	Get(ctx context.Context, id uuid.UUID) (*model.CareUnit, error)
	List(ctx context.Context) ([]*model.CareUnit, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateCareUnitRequest, actorID uuid.UUID) (*model.CareUnit, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.CascadeResult, error)

	CreateBed(ctx context.Context, careUnitID uuid.UUID, req *model.CreateBedRequest, actorID uuid.UUID) (*model.Bed, error)
	ListBeds(ctx context.Context, careUnitID uuid.UUID) ([]*model.Bed, error)
	DeleteBed(ctx context.Context, careUnitID, bedID uuid.UUID) error
}

type service struct {
	careUnits repository.CareUnitRepository
	beds      repository.BedRepository
	logger    *logger.Logger
}

func NewService(careUnits repository.CareUnitRepository, beds repository.BedRepository, l *logger.Logger) Service {
	return &service{
		careUnits: careUnits,
		beds:      beds,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateCareUnitRequest, actorID uuid.UUID) (*model.CareUnit, error) {
	unit := &model.CareUnit{
		Base:        model.Base{ID: uuid.New()},
		Audit:       model.Audit{CreatedBy: actorID},
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.careUnits.Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to create care unit: %w", err)
	}
	return unit, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.CareUnit, error) {
	unit, err := s.careUnits.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("care unit")
		}
		return nil, fmt.Errorf("failed to get care unit: %w", err)
	}
	return unit, nil
}

func (s *service) List(ctx context.Context) ([]*model.CareUnit, error) {
	units, err := s.careUnits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list care units: %w", err)
	}
	return units, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCareUnitRequest, actorID uuid.UUID) (*model.CareUnit, error) {
	unit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		unit.Name = *req.Name
	}
	if req.Description != nil {
		unit.Description = *req.Description
	}
	unit.UpdatedBy = &actorID

	if err := s.careUnits.Update(ctx, unit); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("care unit")
		}
		return nil, fmt.Errorf("failed to update care unit: %w", err)
	}
	return unit, nil
}

// Delete removes the care unit and cascades over its dependent
// records. The dependent deletes run first so a failure part way
// leaves the unit in place and the operation retryable.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (*model.CascadeResult, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	result := &model.CascadeResult{}

	beds, err := s.careUnits.DeleteBeds(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete beds: %w", err)
	}
	result.BedsDeleted = beds

	fluids, err := s.careUnits.DeleteFluids(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete fluid records: %w", err)
	}
	result.FluidsDeleted = fluids

	medications, err := s.careUnits.DeleteMedications(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete medication records: %w", err)
	}
	result.MedicationsDeleted = medications

	if err := s.careUnits.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("care unit")
		}
		return nil, fmt.Errorf("failed to delete care unit: %w", err)
	}

	s.logger.Info("care unit deleted",
		"care_unit_id", id,
		"beds_deleted", result.BedsDeleted,
		"fluids_deleted", result.FluidsDeleted,
		"medications_deleted", result.MedicationsDeleted,
	)
	return result, nil
}

func (s *service) CreateBed(ctx context.Context, careUnitID uuid.UUID, req *model.CreateBedRequest, actorID uuid.UUID) (*model.Bed, error) {
	if _, err := s.Get(ctx, careUnitID); err != nil {
		return nil, err
	}

	bed := &model.Bed{
		Base:       model.Base{ID: uuid.New()},
		Audit:      model.Audit{CreatedBy: actorID},
		BedName:    req.BedName,
		CareUnitID: careUnitID,
	}
	if err := s.beds.Create(ctx, bed); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Bed name already exists in this care unit")
		}
		return nil, fmt.Errorf("failed to create bed: %w", err)
	}
	return bed, nil
}

func (s *service) ListBeds(ctx context.Context, careUnitID uuid.UUID) ([]*model.Bed, error) {
	if _, err := s.Get(ctx, careUnitID); err != nil {
		return nil, err
	}

	beds, err := s.beds.List(ctx, careUnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list beds: %w", err)
	}
	return beds, nil
}

// DeleteBed removes a single bed. Occupied beds cannot be deleted; the
// occupant must be discharged or transferred first.
func (s *service) DeleteBed(ctx context.Context, careUnitID, bedID uuid.UUID) error {
	bed, err := s.beds.GetInCareUnit(ctx, bedID, careUnitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("bed in this care unit")
		}
		return fmt.Errorf("failed to resolve bed: %w", err)
	}

	if bed.IsOccupied {
		return apperrors.NewConflict("Cannot delete an occupied bed")
	}

	if err := s.beds.Delete(ctx, bedID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("bed")
		}
		return fmt.Errorf("failed to delete bed: %w", err)
	}
	return nil
}
