package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/ward-api/internal/email"
	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
	"github.com/meditrack/ward-api/internal/service/event"
	"github.com/meditrack/ward-api/internal/service/occupancy"
	apperrors "github.com/meditrack/ward-api/pkg/errors"
	"github.com/meditrack/ward-api/pkg/logger"
)

// Service manages the patient admission lifecycle: Admitted
// (is_active, no discharged_at) -> Discharged (discharged_at set) and
// the soft-delete path. Bed state moves with every transition except
// soft delete, which leaves the bed untouched.
type Service interface {
	Admit(ctx context.Context, req *model.AdmitPatientRequest, actorID uuid.UUID) (*model.PatientDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error)
	List(ctx context.Context) ([]*model.PatientDetail, error)
	ListByCareUnit(ctx context.Context, careUnitID uuid.UUID) ([]*model.PatientDetail, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actorID uuid.UUID) (*model.PatientDetail, error)
	Discharge(ctx context.Context, id, actorID uuid.UUID) error
	Delete(ctx context.Context, id, actorID uuid.UUID) error
}

type service struct {
	patients repository.PatientRepository
	beds     repository.BedRepository
	users    repository.UserRepository
	enforcer *occupancy.Enforcer
	events   event.Recorder
	emails   email.Service
	logger   *logger.Logger
}

func NewService(
	patients repository.PatientRepository,
	beds repository.BedRepository,
	users repository.UserRepository,
	enforcer *occupancy.Enforcer,
	events event.Recorder,
	emails email.Service,
	l *logger.Logger,
) Service {
	return &service{
		patients: patients,
		beds:     beds,
		users:    users,
		enforcer: enforcer,
		events:   events,
		emails:   emails,
		logger:   l,
	}
}

// Admit creates the patient record first, then occupies the bed. The
// occupy is conditional, so two concurrent admissions cannot both
// claim the bed; the loser's patient record is rolled back before the
// Conflict is returned, keeping one admitted patient per bed.
func (s *service) Admit(ctx context.Context, req *model.AdmitPatientRequest, actorID uuid.UUID) (*model.PatientDetail, error) {
	bed, err := s.enforcer.ValidateTarget(ctx, req.CareUnitID, req.BedID)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.CheckAvailability(bed, uuid.Nil); err != nil {
		return nil, err
	}

	doctor, err := s.users.GetActive(ctx, req.AssignedDoctor)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("assigned doctor")
		}
		return nil, fmt.Errorf("failed to resolve assigned doctor: %w", err)
	}

	admittedAt := time.Now()
	if req.AdmittedAt != nil {
		admittedAt = *req.AdmittedAt
	}

	pan := req.PAN
	patient := &model.Patient{
		Base:             model.Base{ID: uuid.New()},
		Audit:            model.Audit{CreatedBy: actorID},
		PAN:              &pan,
		Name:             req.Name,
		Age:              req.Age,
		BloodGroup:       req.BloodGroup,
		Gender:           req.Gender,
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		Severity:         req.Severity,
		Symptoms:         req.Symptoms,
		CareUnitID:       req.CareUnitID,
		BedID:            bed.ID,
		AssignedDoctorID: doctor.ID,
		AdmittedAt:       admittedAt,
		IsActive:         true,
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrBedOccupied) {
			return nil, apperrors.NewConflict("Selected bed is already occupied")
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Patient with this PAN already exists")
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if err := s.beds.Occupy(ctx, bed.ID, actorID); err != nil {
		if errors.Is(err, repository.ErrBedOccupied) {
			// Lost a race after the availability check. Roll the patient
			// record back so the winner stays the bed's only admitted
			// occupant.
			if delErr := s.patients.SoftDelete(ctx, patient.ID, actorID); delErr != nil {
				return nil, apperrors.NewInconsistency("bed lost to a concurrent admission and the patient record could not be rolled back", delErr)
			}
			return nil, apperrors.NewConflict("Selected bed is already occupied")
		}
		return nil, apperrors.NewInconsistency("patient admitted but bed state not updated", err)
	}

	detail, err := s.patients.GetDetail(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admitted patient: %w", err)
	}

	s.recordEvent(ctx, model.EventPatientAdmitted, detail)
	s.notifyAdmission(doctor, detail)

	return detail, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error) {
	detail, err := s.patients.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient")
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return detail, nil
}

func (s *service) List(ctx context.Context) ([]*model.PatientDetail, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *service) ListByCareUnit(ctx context.Context, careUnitID uuid.UUID) ([]*model.PatientDetail, error) {
	patients, err := s.patients.ListByCareUnit(ctx, careUnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients by care unit: %w", err)
	}
	return patients, nil
}

// Update applies field changes and, when the care unit or bed is
// supplied, performs a transfer: free the current bed, occupy the
// target. Missing target fields default to the patient's current
// values.
func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actorID uuid.UUID) (*model.PatientDetail, error) {
	current, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient")
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if req.CareUnitID != nil || req.BedID != nil {
		targetUnitID := current.CareUnitID
		if req.CareUnitID != nil {
			targetUnitID = *req.CareUnitID
		}
		targetBedID := current.BedID
		if req.BedID != nil {
			targetBedID = *req.BedID
		}

		targetBed, err := s.enforcer.ValidateTarget(ctx, targetUnitID, targetBedID)
		if err != nil {
			return nil, err
		}

		if targetBed.ID != current.BedID {
			if err := s.enforcer.CheckAvailability(targetBed, current.BedID); err != nil {
				return nil, err
			}
			// Free then occupy, as a tight pair.
			if err := s.beds.Release(ctx, current.BedID, actorID); err != nil {
				return nil, fmt.Errorf("failed to free current bed: %w", err)
			}
			if err := s.beds.Occupy(ctx, targetBed.ID, actorID); err != nil {
				if errors.Is(err, repository.ErrBedOccupied) {
					return nil, apperrors.NewConflict("Selected bed is already occupied")
				}
				return nil, apperrors.NewInconsistency("transfer freed the current bed but could not occupy the target", err)
			}
		}

		current.CareUnitID = targetUnitID
		current.BedID = targetBed.ID
	}

	s.applyFieldUpdates(current, req)

	if current.DischargedAt != nil && current.DischargedAt.Before(current.AdmittedAt) {
		return nil, apperrors.NewValidation("discharged_at cannot be before admitted_at")
	}

	current.UpdatedBy = &actorID
	if err := s.patients.Update(ctx, current); err != nil {
		if errors.Is(err, repository.ErrBedOccupied) {
			return nil, apperrors.NewConflict("Selected bed is already occupied")
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	detail, err := s.patients.GetDetail(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated patient: %w", err)
	}

	s.recordEvent(ctx, model.EventPatientUpdated, detail)
	return detail, nil
}

func (s *service) applyFieldUpdates(p *model.Patient, req *model.UpdatePatientRequest) {
	if req.PAN != nil {
		p.PAN = req.PAN
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.BloodGroup != nil {
		p.BloodGroup = *req.BloodGroup
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Severity != nil {
		p.Severity = *req.Severity
	}
	if req.Symptoms != nil {
		p.Symptoms = req.Symptoms
	}
	if req.AssignedDoctor != nil {
		p.AssignedDoctorID = *req.AssignedDoctor
	}
	if req.AdmittedAt != nil {
		p.AdmittedAt = *req.AdmittedAt
	}
	if req.DischargedAt != nil {
		p.DischargedAt = req.DischargedAt
	}
}

// Discharge sets discharged_at, persists the patient, then frees the
// bed. The bed is freed only after the patient write succeeds.
func (s *service) Discharge(ctx context.Context, id, actorID uuid.UUID) error {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("patient")
		}
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if patient.DischargedAt != nil {
		return apperrors.NewConflict("Patient already discharged")
	}

	now := time.Now()
	patient.DischargedAt = &now
	patient.UpdatedBy = &actorID

	if err := s.patients.Update(ctx, patient); err != nil {
		return fmt.Errorf("failed to discharge patient: %w", err)
	}

	if err := s.beds.Release(ctx, patient.BedID, actorID); err != nil {
		return apperrors.NewInconsistency("patient discharged but bed not freed", err)
	}

	s.recordEvent(ctx, model.EventPatientDischarged, patient)
	s.notifyDischarge(ctx, patient)

	return nil
}

// Delete soft-deletes the patient. It intentionally does not touch bed
// occupancy; a removed-but-never-discharged patient keeps its bed
// reserved until the reconciler frees it.
func (s *service) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if err := s.patients.SoftDelete(ctx, id, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("patient")
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.recordEvent(ctx, model.EventPatientDeleted, map[string]interface{}{"id": id})
	return nil
}

func (s *service) recordEvent(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Record(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to record event", "event_type", eventType)
	}
}

func (s *service) notifyAdmission(doctor *model.User, detail *model.PatientDetail) {
	if doctor.Email == nil {
		return
	}
	to := *doctor.Email
	go func() {
		if err := s.emails.SendAdmissionNotice(context.Background(), to, detail.Name, detail.CareUnitName, detail.BedName); err != nil {
			s.logger.Error(err, "failed to send admission notice", "doctor", doctor.Username)
		}
	}()
}

func (s *service) notifyDischarge(ctx context.Context, patient *model.Patient) {
	doctor, err := s.users.Get(ctx, patient.AssignedDoctorID)
	if err != nil || doctor.Email == nil {
		return
	}
	detail, err := s.patients.GetDetail(ctx, patient.ID)
	if err != nil {
		return
	}
	to := *doctor.Email
	go func() {
		if err := s.emails.SendDischargeNotice(context.Background(), to, detail.Name, detail.CareUnitName); err != nil {
			s.logger.Error(err, "failed to send discharge notice", "doctor", doctor.Username)
		}
	}()
}
