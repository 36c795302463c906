package model

import (
	"github.com/google/uuid"
)

// Role groups users; the staff directory resolves the "Staff" role by
// case-insensitive name.
type Role struct {
	Base
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// User is a staff member; doctors are users assigned to patients.
// Only active users may be assigned as a patient's doctor.
type User struct {
	Base
	RoleID         uuid.UUID  `db:"role_id" json:"role_id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Username       string     `db:"username" json:"username"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Specialization *string    `db:"specialization" json:"specialization,omitempty"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedBy      *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
}

type CreateStaffRequest struct {
	FirstName      string  `json:"first_name" binding:"required,min=1,max=100"`
	LastName       string  `json:"last_name" binding:"required,min=1,max=100"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	Username       string  `json:"username" binding:"required,alphanum,min=3,max=30"`
	Password       string  `json:"password" binding:"required,min=6"`
}

type UpdateStaffRequest struct {
	FirstName      *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	Username       *string `json:"username" binding:"omitempty,alphanum,min=3,max=30"`
	Password       *string `json:"password" binding:"omitempty,min=6"`
}
