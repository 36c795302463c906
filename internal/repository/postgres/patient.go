package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
)

const patientDetailQuery = `
	SELECT p.*,
		cu.name AS care_unit_name,
		b.bed_name AS bed_name,
		d.first_name AS doctor_first_name,
		d.last_name AS doctor_last_name,
		d.username AS doctor_username,
		d.specialization AS doctor_specialization,
		cb.username AS created_by_username
	FROM patients p
	JOIN care_units cu ON cu.id = p.care_unit_id
	JOIN beds b ON b.id = p.bed_id
	LEFT JOIN users d ON d.id = p.assigned_doctor_id
	LEFT JOIN users cb ON cb.id = p.created_by
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, pan, name, age, blood_group, gender, phone, email, address,
			severity, symptoms, care_unit_id, bed_id, assigned_doctor_id,
			admitted_at, discharged_at, is_active, created_by, created_at, updated_at
		) VALUES (
			:id, :pan, :name, :age, :blood_group, :gender, :phone, :email, :address,
			:severity, :symptoms, :care_unit_id, :bed_id, :assigned_doctor_id,
			:admitted_at, :discharged_at, :is_active, :created_by, :created_at, :updated_at
		)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, patient)
	// The partial unique index on bed_id admits one active,
	// undischarged patient per bed.
	if violatesConstraint(err, "patients_bed_id_key") {
		return repository.ErrBedOccupied
	}
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error) {
	query := patientDetailQuery + ` WHERE p.id = $1`
	var detail model.PatientDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient detail: %w", err)
	}
	return &detail, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET pan = :pan, name = :name, age = :age, blood_group = :blood_group,
			gender = :gender, phone = :phone, email = :email, address = :address,
			severity = :severity, symptoms = :symptoms, care_unit_id = :care_unit_id,
			bed_id = :bed_id, assigned_doctor_id = :assigned_doctor_id,
			admitted_at = :admitted_at, discharged_at = :discharged_at,
			is_active = :is_active, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id
	`
	patient.UpdatedAt = time.Now()

	res, err := r.db.NamedExecContext(ctx, query, patient)
	if violatesConstraint(err, "patients_bed_id_key") {
		return repository.ErrBedOccupied
	}
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id, actorID uuid.UUID) error {
	query := `
		UPDATE patients
		SET is_active = FALSE, updated_by = $1, updated_at = $2
		WHERE id = $3
	`
	res, err := r.db.ExecContext(ctx, query, actorID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to soft delete patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.PatientDetail, error) {
	query := patientDetailQuery + ` WHERE p.is_active = TRUE ORDER BY p.created_at DESC`
	var patients []*model.PatientDetail
	err := r.db.SelectContext(ctx, &patients, query)
	return patients, err
}

func (r *patientRepository) ListByCareUnit(ctx context.Context, careUnitID uuid.UUID) ([]*model.PatientDetail, error) {
	query := patientDetailQuery + ` WHERE p.is_active = TRUE AND p.care_unit_id = $1 ORDER BY p.created_at DESC`
	var patients []*model.PatientDetail
	err := r.db.SelectContext(ctx, &patients, query, careUnitID)
	return patients, err
}

func (r *patientRepository) CountAdmitted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM patients WHERE is_active = TRUE AND discharged_at IS NULL`)
	return count, err
}
