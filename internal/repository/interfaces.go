package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/ward-api/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (bed name within a care unit, patient PAN, username).
var ErrDuplicate = errors.New("duplicate record")

// ErrBedOccupied is returned by BedRepository.Occupy when the
// conditional update finds the bed already occupied. This is the
// single concurrency-correctness contract: two concurrent admissions
// can never both claim a bed.
var ErrBedOccupied = errors.New("bed is already occupied")

// All repository interfaces in one file
type (
	CareUnitRepository interface {
		Create(ctx context.Context, unit *model.CareUnit) error
		Get(ctx context.Context, id uuid.UUID) (*model.CareUnit, error)
		Update(ctx context.Context, unit *model.CareUnit) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.CareUnit, error)
		// Cascade deletes for dependent records; each returns the
		// number of rows removed.
		DeleteBeds(ctx context.Context, careUnitID uuid.UUID) (int64, error)
		DeleteFluids(ctx context.Context, careUnitID uuid.UUID) (int64, error)
		DeleteMedications(ctx context.Context, careUnitID uuid.UUID) (int64, error)
	}

	BedRepository interface {
		Create(ctx context.Context, bed *model.Bed) error
		Get(ctx context.Context, id uuid.UUID) (*model.Bed, error)
		// GetInCareUnit resolves a bed only when it belongs to the
		// given care unit.
		GetInCareUnit(ctx context.Context, id, careUnitID uuid.UUID) (*model.Bed, error)
		List(ctx context.Context, careUnitID uuid.UUID) ([]*model.Bed, error)
		Delete(ctx context.Context, id uuid.UUID) error
		// Occupy marks the bed occupied with a conditional update and
		// returns ErrBedOccupied when the bed was taken concurrently.
		Occupy(ctx context.Context, id, actorID uuid.UUID) error
		// Release unconditionally marks the bed unoccupied.
		Release(ctx context.Context, id, actorID uuid.UUID) error
		// ListOrphanedOccupied returns beds marked occupied with no
		// currently-admitted occupant; used by the reconciler.
		ListOrphanedOccupied(ctx context.Context) ([]*model.Bed, error)
		CountOccupied(ctx context.Context) (int64, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error)
		Update(ctx context.Context, patient *model.Patient) error
		SoftDelete(ctx context.Context, id, actorID uuid.UUID) error
		// List returns active patients, newest first.
		List(ctx context.Context) ([]*model.PatientDetail, error)
		ListByCareUnit(ctx context.Context, careUnitID uuid.UUID) ([]*model.PatientDetail, error)
		CountAdmitted(ctx context.Context) (int64, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		// GetActive resolves a user only when IsActive is true.
		GetActive(ctx context.Context, id uuid.UUID) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByRole(ctx context.Context, roleID uuid.UUID) ([]*model.User, error)
		ExistsByUsername(ctx context.Context, username string) (bool, error)
		ExistsByEmail(ctx context.Context, email string) (bool, error)
		ExistsByPhone(ctx context.Context, phone string) (bool, error)
		// GetRoleByName resolves a role by case-insensitive name.
		GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	}

	LogoRepository interface {
		Create(ctx context.Context, logo *model.HospitalLogo) error
		Get(ctx context.Context, id uuid.UUID) (*model.HospitalLogo, error)
		// GetActive returns the newest active logo.
		GetActive(ctx context.Context) (*model.HospitalLogo, error)
		Update(ctx context.Context, logo *model.HospitalLogo) error
		Delete(ctx context.Context, id uuid.UUID) error
		// DeactivateAll clears the active flag on every logo except
		// the given one (pass uuid.Nil to deactivate all).
		DeactivateAll(ctx context.Context, exceptID uuid.UUID) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		// MoveToDeadLetter parks an event that exhausted its retries;
		// dead-lettered events are never re-selected for delivery.
		MoveToDeadLetter(ctx context.Context, id uuid.UUID, errMsg string) error
	}
)
