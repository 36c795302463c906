package model

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// BloodGroups enumerates the accepted blood group values
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Patient is created at admission, mutated on update/transfer, and
// logically destroyed via discharge (DischargedAt set, bed freed) or
// soft delete (IsActive=false, bed untouched).
type Patient struct {
	Base
	Audit
	PAN              *string    `db:"pan" json:"pan,omitempty"`
	Name             string     `db:"name" json:"name"`
	Age              int        `db:"age" json:"age"`
	BloodGroup       string     `db:"blood_group" json:"blood_group"`
	Gender           string     `db:"gender" json:"gender"`
	Phone            string     `db:"phone" json:"phone"`
	Email            *string    `db:"email" json:"email,omitempty"`
	Address          string     `db:"address" json:"address"`
	Severity         Severity   `db:"severity" json:"severity"`
	Symptoms         *string    `db:"symptoms" json:"symptoms,omitempty"`
	CareUnitID       uuid.UUID  `db:"care_unit_id" json:"care_unit_id"`
	BedID            uuid.UUID  `db:"bed_id" json:"bed_id"`
	AssignedDoctorID uuid.UUID  `db:"assigned_doctor_id" json:"assigned_doctor_id"`
	AdmittedAt       time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt     *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	IsActive         bool       `db:"is_active" json:"is_active"`
}

// IsAdmitted reports whether the patient currently holds a bed.
func (p *Patient) IsAdmitted() bool {
	return p.IsActive && p.DischargedAt == nil
}

// PatientDetail is a patient row with the denormalized references the
// read operations return: care unit name, bed name, doctor identity
// and creator username.
type PatientDetail struct {
	Patient
	CareUnitName         string  `db:"care_unit_name" json:"care_unit_name"`
	BedName              string  `db:"bed_name" json:"bed_name"`
	DoctorFirstName      *string `db:"doctor_first_name" json:"doctor_first_name,omitempty"`
	DoctorLastName       *string `db:"doctor_last_name" json:"doctor_last_name,omitempty"`
	DoctorUsername       *string `db:"doctor_username" json:"doctor_username,omitempty"`
	DoctorSpecialization *string `db:"doctor_specialization" json:"doctor_specialization,omitempty"`
	CreatedByUsername    *string `db:"created_by_username" json:"created_by_username,omitempty"`
}

type AdmitPatientRequest struct {
	PAN            string     `json:"pan" binding:"required,max=100"`
	Name           string     `json:"name" binding:"required,max=200"`
	Age            int        `json:"age" binding:"min=0,max=130"`
	BloodGroup     string     `json:"blood_group" binding:"required,bloodgroup"`
	Gender         string     `json:"gender" binding:"required,oneof=male female other"`
	Phone          string     `json:"phone" binding:"required,max=20"`
	Email          *string    `json:"email" binding:"omitempty,email"`
	Address        string     `json:"address" binding:"required,max=500"`
	Severity       Severity   `json:"severity" binding:"required,oneof=normal severe critical"`
	Symptoms       *string    `json:"symptoms" binding:"omitempty,max=500"`
	CareUnitID     uuid.UUID  `json:"care_unit_id" binding:"required"`
	BedID          uuid.UUID  `json:"bed_id" binding:"required"`
	AssignedDoctor uuid.UUID  `json:"assigned_doctor_id" binding:"required"`
	AdmittedAt     *time.Time `json:"admitted_at"`
}

type UpdatePatientRequest struct {
	PAN            *string    `json:"pan" binding:"omitempty,max=100"`
	Name           *string    `json:"name" binding:"omitempty,max=200"`
	Age            *int       `json:"age" binding:"omitempty,min=0,max=130"`
	BloodGroup     *string    `json:"blood_group" binding:"omitempty,bloodgroup"`
	Gender         *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	Phone          *string    `json:"phone" binding:"omitempty,max=20"`
	Email          *string    `json:"email" binding:"omitempty,email"`
	Address        *string    `json:"address" binding:"omitempty,max=500"`
	Severity       *Severity  `json:"severity" binding:"omitempty,oneof=normal severe critical"`
	Symptoms       *string    `json:"symptoms" binding:"omitempty,max=500"`
	CareUnitID     *uuid.UUID `json:"care_unit_id"`
	BedID          *uuid.UUID `json:"bed_id"`
	AssignedDoctor *uuid.UUID `json:"assigned_doctor_id"`
	AdmittedAt     *time.Time `json:"admitted_at"`
	DischargedAt   *time.Time `json:"discharged_at"`
}
