package careunit

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
	apperrors "github.com/meditrack/ward-api/pkg/errors"
	"github.com/meditrack/ward-api/pkg/logger"
)

type fakeCareUnitRepo struct {
	units       map[uuid.UUID]*model.CareUnit
	fluids      map[uuid.UUID]int64
	medications map[uuid.UUID]int64
	beds        *fakeBedRepo
}

func (f *fakeCareUnitRepo) Create(ctx context.Context, unit *model.CareUnit) error {
	f.units[unit.ID] = unit
	return nil
}

func (f *fakeCareUnitRepo) Get(ctx context.Context, id uuid.UUID) (*model.CareUnit, error) {
	unit, ok := f.units[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return unit, nil
}

func (f *fakeCareUnitRepo) Update(ctx context.Context, unit *model.CareUnit) error {
	if _, ok := f.units[unit.ID]; !ok {
		return repository.ErrNotFound
	}
	f.units[unit.ID] = unit
	return nil
}

func (f *fakeCareUnitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.units[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.units, id)
	return nil
}

func (f *fakeCareUnitRepo) List(ctx context.Context) ([]*model.CareUnit, error) {
	var out []*model.CareUnit
	for _, u := range f.units {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeCareUnitRepo) DeleteBeds(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	var n int64
	for id, bed := range f.beds.beds {
		if bed.CareUnitID == careUnitID {
			delete(f.beds.beds, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCareUnitRepo) DeleteFluids(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	n := f.fluids[careUnitID]
	delete(f.fluids, careUnitID)
	return n, nil
}

func (f *fakeCareUnitRepo) DeleteMedications(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	n := f.medications[careUnitID]
	delete(f.medications, careUnitID)
	return n, nil
}

type fakeBedRepo struct {
	beds map[uuid.UUID]*model.Bed
}

func (f *fakeBedRepo) Create(ctx context.Context, bed *model.Bed) error {
	for _, existing := range f.beds {
		if existing.BedName == bed.BedName && existing.CareUnitID == bed.CareUnitID {
			return repository.ErrDuplicate
		}
	}
	f.beds[bed.ID] = bed
	return nil
}

func (f *fakeBedRepo) Get(ctx context.Context, id uuid.UUID) (*model.Bed, error) {
	bed, ok := f.beds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return bed, nil
}

func (f *fakeBedRepo) GetInCareUnit(ctx context.Context, id, careUnitID uuid.UUID) (*model.Bed, error) {
	bed, ok := f.beds[id]
	if !ok || bed.CareUnitID != careUnitID {
		return nil, repository.ErrNotFound
	}
	return bed, nil
}

func (f *fakeBedRepo) List(ctx context.Context, careUnitID uuid.UUID) ([]*model.Bed, error) {
	var out []*model.Bed
	for _, bed := range f.beds {
		if bed.CareUnitID == careUnitID {
			out = append(out, bed)
		}
	}
	return out, nil
}

func (f *fakeBedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.beds[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.beds, id)
	return nil
}

func (f *fakeBedRepo) Occupy(ctx context.Context, id, actorID uuid.UUID) error  { return nil }
func (f *fakeBedRepo) Release(ctx context.Context, id, actorID uuid.UUID) error { return nil }
func (f *fakeBedRepo) ListOrphanedOccupied(ctx context.Context) ([]*model.Bed, error) {
	return nil, nil
}
func (f *fakeBedRepo) CountOccupied(ctx context.Context) (int64, error) { return 0, nil }

func newService(t *testing.T) (Service, *fakeCareUnitRepo, *fakeBedRepo) {
	t.Helper()
	beds := &fakeBedRepo{beds: map[uuid.UUID]*model.Bed{}}
	units := &fakeCareUnitRepo{
		units:       map[uuid.UUID]*model.CareUnit{},
		fluids:      map[uuid.UUID]int64{},
		medications: map[uuid.UUID]int64{},
		beds:        beds,
	}
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	return NewService(units, beds, l), units, beds
}

func TestCreateAndGet(t *testing.T) {
	svc, _, _ := newService(t)
	actor := uuid.New()

	unit, err := svc.Create(context.Background(), &model.CreateCareUnitRequest{
		Name:        "ICU",
		Description: "Intensive care",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, actor, unit.CreatedBy)

	got, err := svc.Get(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Equal(t, "ICU", got.Name)

	_, err = svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "care unit not found")
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newService(t)
	actor := uuid.New()

	unit, err := svc.Create(context.Background(), &model.CreateCareUnitRequest{Name: "ICU"}, actor)
	require.NoError(t, err)

	name := "ICU-2"
	updated, err := svc.Update(context.Background(), unit.ID, &model.UpdateCareUnitRequest{Name: &name}, actor)
	require.NoError(t, err)
	assert.Equal(t, "ICU-2", updated.Name)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, actor, *updated.UpdatedBy)

	_, err = svc.Update(context.Background(), uuid.New(), &model.UpdateCareUnitRequest{Name: &name}, actor)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteCascades(t *testing.T) {
	svc, units, beds := newService(t)
	actor := uuid.New()

	unit, err := svc.Create(context.Background(), &model.CreateCareUnitRequest{Name: "ICU"}, actor)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateBed(context.Background(), unit.ID, &model.CreateBedRequest{BedName: fmt.Sprintf("B-%d", i)}, actor)
		require.NoError(t, err)
	}
	units.fluids[unit.ID] = 5
	units.medications[unit.ID] = 2

	result, err := svc.Delete(context.Background(), unit.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.BedsDeleted)
	assert.Equal(t, int64(5), result.FluidsDeleted)
	assert.Equal(t, int64(2), result.MedicationsDeleted)
	assert.Empty(t, units.units)
	assert.Empty(t, beds.beds)

	_, err = svc.Delete(context.Background(), unit.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBeds(t *testing.T) {
	svc, _, _ := newService(t)
	actor := uuid.New()

	unit, err := svc.Create(context.Background(), &model.CreateCareUnitRequest{Name: "ICU"}, actor)
	require.NoError(t, err)

	bed, err := svc.CreateBed(context.Background(), unit.ID, &model.CreateBedRequest{BedName: "B-1"}, actor)
	require.NoError(t, err)
	assert.False(t, bed.IsOccupied)

	listed, err := svc.ListBeds(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = svc.CreateBed(context.Background(), unit.ID, &model.CreateBedRequest{BedName: "B-1"}, actor)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "Bed name already exists")

	_, err = svc.CreateBed(context.Background(), uuid.New(), &model.CreateBedRequest{BedName: "B-2"}, actor)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteBed(t *testing.T) {
	svc, _, beds := newService(t)
	actor := uuid.New()

	unit, err := svc.Create(context.Background(), &model.CreateCareUnitRequest{Name: "ICU"}, actor)
	require.NoError(t, err)
	bed, err := svc.CreateBed(context.Background(), unit.ID, &model.CreateBedRequest{BedName: "B-1"}, actor)
	require.NoError(t, err)

	t.Run("occupied bed cannot be deleted", func(t *testing.T) {
		beds.beds[bed.ID].IsOccupied = true
		err := svc.DeleteBed(context.Background(), unit.ID, bed.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("free bed is deleted", func(t *testing.T) {
		beds.beds[bed.ID].IsOccupied = false
		require.NoError(t, svc.DeleteBed(context.Background(), unit.ID, bed.ID))
		assert.Empty(t, beds.beds)
	})

	t.Run("bed in wrong unit is not found", func(t *testing.T) {
		err := svc.DeleteBed(context.Background(), unit.ID, uuid.New())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
