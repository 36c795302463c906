package patient

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/ward-api/internal/email"
	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
	"github.com/meditrack/ward-api/internal/service/occupancy"
	apperrors "github.com/meditrack/ward-api/pkg/errors"
	"github.com/meditrack/ward-api/pkg/logger"
)

type fakeCareUnitRepo struct {
	units map[uuid.UUID]*model.CareUnit
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

func (f *fakeCareUnitRepo) Update(ctx context.Context, unit *model.CareUnit) error { return nil }
func (f *fakeCareUnitRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (f *fakeCareUnitRepo) List(ctx context.Context) ([]*model.CareUnit, error)    { return nil, nil }
func (f *fakeCareUnitRepo) DeleteBeds(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeCareUnitRepo) DeleteFluids(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeCareUnitRepo) DeleteMedications(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeBedRepo struct {
	beds map[uuid.UUID]*model.Bed
	// occupyErr, when set, is returned by Occupy regardless of state.
	occupyErr  error
	releaseErr error
}

func (f *fakeBedRepo) Create(ctx context.Context, bed *model.Bed) error {
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
	return nil, nil
}

func (f *fakeBedRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeBedRepo) Occupy(ctx context.Context, id, actorID uuid.UUID) error {
	if f.occupyErr != nil {
		return f.occupyErr
	}
	bed, ok := f.beds[id]
	if !ok {
		return repository.ErrNotFound
	}
	if bed.IsOccupied {
		return repository.ErrBedOccupied
	}
	bed.IsOccupied = true
	return nil
}

func (f *fakeBedRepo) Release(ctx context.Context, id, actorID uuid.UUID) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	bed, ok := f.beds[id]
	if !ok {
		return repository.ErrNotFound
	}
	bed.IsOccupied = false
	return nil
}

func (f *fakeBedRepo) ListOrphanedOccupied(ctx context.Context) ([]*model.Bed, error) {
	return nil, nil
}

func (f *fakeBedRepo) CountOccupied(ctx context.Context) (int64, error) { return 0, nil }

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
	// createErr and softDeleteErr, when set, are returned unconditionally.
	createErr     error
	softDeleteErr error
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) GetDetail(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error) {
	p, ok := f.patients[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrNotFound
	}
	return &model.PatientDetail{Patient: *p, CareUnitName: "ICU", BedName: "B-1"}, nil
}

func (f *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error {
	if _, ok := f.patients[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

func (f *fakePatientRepo) SoftDelete(ctx context.Context, id, actorID uuid.UUID) error {
	if f.softDeleteErr != nil {
		return f.softDeleteErr
	}
	p, ok := f.patients[id]
	if !ok || !p.IsActive {
		return repository.ErrNotFound
	}
	p.IsActive = false
	p.UpdatedBy = &actorID
	return nil
}

func (f *fakePatientRepo) List(ctx context.Context) ([]*model.PatientDetail, error) {
	var out []*model.PatientDetail
	for _, p := range f.patients {
		if p.IsActive {
			out = append(out, &model.PatientDetail{Patient: *p})
		}
	}
	return out, nil
}

func (f *fakePatientRepo) ListByCareUnit(ctx context.Context, careUnitID uuid.UUID) ([]*model.PatientDetail, error) {
	var out []*model.PatientDetail
	for _, p := range f.patients {
		if p.IsActive && p.CareUnitID == careUnitID {
			out = append(out, &model.PatientDetail{Patient: *p})
		}
	}
	return out, nil
}

func (f *fakePatientRepo) CountAdmitted(ctx context.Context) (int64, error) { return 0, nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error { return nil }

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetActive(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *model.User) error { return nil }
func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error  { return nil }
func (f *fakeUserRepo) ListByRole(ctx context.Context, roleID uuid.UUID) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return false, nil
}
func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}
func (f *fakeUserRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return false, nil
}
func (f *fakeUserRepo) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	return nil, repository.ErrNotFound
}

type fakeRecorder struct {
	events []string
}

func (f *fakeRecorder) Record(ctx context.Context, eventType string, payload interface{}) error {
	f.events = append(f.events, eventType)
	return nil
}

type fixture struct {
	svc      Service
	careUnit *model.CareUnit
	bed      *model.Bed
	bed2     *model.Bed
	doctor   *model.User
	patients *fakePatientRepo
	beds     *fakeBedRepo
	units    *fakeCareUnitRepo
	users    *fakeUserRepo
	recorder *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	unit := &model.CareUnit{Base: model.Base{ID: uuid.New()}, Name: "ICU"}
	bed := &model.Bed{Base: model.Base{ID: uuid.New()}, BedName: "B-1", CareUnitID: unit.ID}
	bed2 := &model.Bed{Base: model.Base{ID: uuid.New()}, BedName: "B-2", CareUnitID: unit.ID}
	doctor := &model.User{
		Base:      model.Base{ID: uuid.New()},
		FirstName: "Asha",
		LastName:  "Rao",
		Username:  "arao",
		IsActive:  true,
	}

	units := &fakeCareUnitRepo{units: map[uuid.UUID]*model.CareUnit{unit.ID: unit}}
	beds := &fakeBedRepo{beds: map[uuid.UUID]*model.Bed{bed.ID: bed, bed2.ID: bed2}}
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{doctor.ID: doctor}}
	recorder := &fakeRecorder{}

	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})

	svc := NewService(
		patients, beds, users,
		occupancy.NewEnforcer(units, beds),
		recorder,
		email.NewNoopService(l),
		l,
	)

	return &fixture{
		svc:      svc,
		careUnit: unit,
		bed:      bed,
		bed2:     bed2,
		doctor:   doctor,
		patients: patients,
		beds:     beds,
		units:    units,
		users:    users,
		recorder: recorder,
	}
}

func (f *fixture) admitRequest() *model.AdmitPatientRequest {
	return &model.AdmitPatientRequest{
		PAN:            "PAN123",
		Name:           "Ravi Kumar",
		Age:            42,
		BloodGroup:     "O+",
		Gender:         "male",
		Phone:          "9900112233",
		Address:        "12 Lake Road",
		Severity:       model.SeveritySevere,
		CareUnitID:     f.careUnit.ID,
		BedID:          f.bed.ID,
		AssignedDoctor: f.doctor.ID,
	}
}

func TestAdmit(t *testing.T) {
	actor := uuid.New()

	t.Run("creates patient and occupies bed", func(t *testing.T) {
		f := newFixture(t)

		detail, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.NoError(t, err)

		assert.Equal(t, "Ravi Kumar", detail.Name)
		assert.Equal(t, f.bed.ID, detail.BedID)
		assert.True(t, detail.IsActive)
		assert.Nil(t, detail.DischargedAt)
		assert.False(t, detail.AdmittedAt.IsZero())
		assert.True(t, f.bed.IsOccupied)
		assert.Equal(t, []string{model.EventPatientAdmitted}, f.recorder.events)
	})

	t.Run("rejects occupied bed", func(t *testing.T) {
		f := newFixture(t)
		f.bed.IsOccupied = true

		_, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "Selected bed is already occupied")
		assert.Empty(t, f.patients.patients)
	})

	t.Run("rejects unknown care unit", func(t *testing.T) {
		f := newFixture(t)
		req := f.admitRequest()
		req.CareUnitID = uuid.New()

		_, err := f.svc.Admit(context.Background(), req, actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "care unit not found")
	})

	t.Run("rejects bed from another care unit", func(t *testing.T) {
		f := newFixture(t)
		other := &model.CareUnit{Base: model.Base{ID: uuid.New()}, Name: "General"}
		f.units.units[other.ID] = other
		req := f.admitRequest()
		req.CareUnitID = other.ID

		_, err := f.svc.Admit(context.Background(), req, actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "bed in this care unit not found")
	})

	t.Run("rejects inactive doctor", func(t *testing.T) {
		f := newFixture(t)
		f.doctor.IsActive = false

		_, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "assigned doctor not found")
	})

	t.Run("lost occupy race rolls the patient back", func(t *testing.T) {
		f := newFixture(t)
		f.beds.occupyErr = repository.ErrBedOccupied

		_, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "Selected bed is already occupied")

		// The loser must not keep an admitted record on the bed.
		for _, p := range f.patients.patients {
			if p.BedID == f.bed.ID && p.IsActive && p.DischargedAt == nil {
				t.Fatalf("bed %s still has an admitted patient after the lost race", f.bed.ID)
			}
		}
	})

	t.Run("failed race rollback is an inconsistency", func(t *testing.T) {
		f := newFixture(t)
		f.beds.occupyErr = repository.ErrBedOccupied
		f.patients.softDeleteErr = context.DeadlineExceeded

		_, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrInconsistency, apperrors.CodeOf(err))
	})

	t.Run("one-occupant index violation at insert conflicts", func(t *testing.T) {
		f := newFixture(t)
		f.patients.createErr = repository.ErrBedOccupied

		_, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "Selected bed is already occupied")
		assert.Empty(t, f.patients.patients)
	})

	t.Run("occupy failure is reported as inconsistency", func(t *testing.T) {
		f := newFixture(t)
		f.beds.occupyErr = context.DeadlineExceeded

		_, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrInconsistency, apperrors.CodeOf(err))
	})

	t.Run("honours supplied admission time", func(t *testing.T) {
		f := newFixture(t)
		admittedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
		req := f.admitRequest()
		req.AdmittedAt = &admittedAt

		detail, err := f.svc.Admit(context.Background(), req, actor)
		require.NoError(t, err)
		assert.True(t, detail.AdmittedAt.Equal(admittedAt))
	})
}

func TestUpdate(t *testing.T) {
	actor := uuid.New()

	admit := func(t *testing.T, f *fixture) *model.PatientDetail {
		t.Helper()
		detail, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.NoError(t, err)
		return detail
	}

	t.Run("transfer frees old bed and occupies new", func(t *testing.T) {
		f := newFixture(t)
		p := admit(t, f)

		updated, err := f.svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{
			BedID: &f.bed2.ID,
		}, actor)
		require.NoError(t, err)

		assert.Equal(t, f.bed2.ID, updated.BedID)
		assert.False(t, f.bed.IsOccupied)
		assert.True(t, f.bed2.IsOccupied)
	})

	t.Run("same bed is a no-op for occupancy", func(t *testing.T) {
		f := newFixture(t)
		p := admit(t, f)

		updated, err := f.svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{
			BedID:      &f.bed.ID,
			CareUnitID: &f.careUnit.ID,
		}, actor)
		require.NoError(t, err)

		assert.Equal(t, f.bed.ID, updated.BedID)
		assert.True(t, f.bed.IsOccupied)
	})

	t.Run("transfer to occupied bed conflicts and keeps current bed", func(t *testing.T) {
		f := newFixture(t)
		p := admit(t, f)
		f.bed2.IsOccupied = true

		_, err := f.svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{
			BedID: &f.bed2.ID,
		}, actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.True(t, f.bed.IsOccupied)
	})

	t.Run("discharge time before admission is rejected", func(t *testing.T) {
		f := newFixture(t)
		p := admit(t, f)
		early := p.AdmittedAt.Add(-time.Hour)

		_, err := f.svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{
			DischargedAt: &early,
		}, actor)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
	})

	t.Run("field updates are applied", func(t *testing.T) {
		f := newFixture(t)
		p := admit(t, f)
		severity := model.SeverityCritical
		name := "Ravi K"

		updated, err := f.svc.Update(context.Background(), p.ID, &model.UpdatePatientRequest{
			Name:     &name,
			Severity: &severity,
		}, actor)
		require.NoError(t, err)

		assert.Equal(t, "Ravi K", updated.Name)
		assert.Equal(t, model.SeverityCritical, updated.Severity)
		assert.Equal(t, "O+", updated.BloodGroup)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Update(context.Background(), uuid.New(), &model.UpdatePatientRequest{}, actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestDischarge(t *testing.T) {
	actor := uuid.New()

	t.Run("sets discharge time and frees bed", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.NoError(t, err)

		require.NoError(t, f.svc.Discharge(context.Background(), p.ID, actor))

		stored := f.patients.patients[p.ID]
		require.NotNil(t, stored.DischargedAt)
		assert.False(t, stored.DischargedAt.Before(stored.AdmittedAt))
		assert.False(t, f.bed.IsOccupied)
		assert.Contains(t, f.recorder.events, model.EventPatientDischarged)
	})

	t.Run("double discharge conflicts", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.NoError(t, err)

		require.NoError(t, f.svc.Discharge(context.Background(), p.ID, actor))
		err = f.svc.Discharge(context.Background(), p.ID, actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "Patient already discharged")
	})

	t.Run("bed release failure is an inconsistency", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.NoError(t, err)
		f.beds.releaseErr = context.DeadlineExceeded

		err = f.svc.Discharge(context.Background(), p.ID, actor)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrInconsistency, apperrors.CodeOf(err))
		// The discharge itself persisted; only the bed is stale.
		require.NotNil(t, f.patients.patients[p.ID].DischargedAt)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Discharge(context.Background(), uuid.New(), actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestDelete(t *testing.T) {
	actor := uuid.New()

	t.Run("soft delete keeps the bed occupied", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(context.Background(), p.ID, actor))

		assert.False(t, f.patients.patients[p.ID].IsActive)
		assert.True(t, f.bed.IsOccupied)
		assert.Contains(t, f.recorder.events, model.EventPatientDeleted)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Delete(context.Background(), uuid.New(), actor)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	actor := uuid.New()

	p, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListByCareUnit(t *testing.T) {
	f := newFixture(t)
	actor := uuid.New()

	_, err := f.svc.Admit(context.Background(), f.admitRequest(), actor)
	require.NoError(t, err)

	listed, err := f.svc.ListByCareUnit(context.Background(), f.careUnit.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	empty, err := f.svc.ListByCareUnit(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
