package postgres

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/meditrack/ward-api/internal/repository"
)

// isUniqueViolation reports whether err is a postgres unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// violatesConstraint reports whether err is a unique violation on the
// named constraint or index.
func violatesConstraint(err error, name string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == name
}

type careUnitRepository struct {
	db *sqlx.DB
}

type bedRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

type logoRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewCareUnitRepository(db *sqlx.DB) repository.CareUnitRepository {
	return &careUnitRepository{db: db}
}

func NewBedRepository(db *sqlx.DB) repository.BedRepository {
	return &bedRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewLogoRepository(db *sqlx.DB) repository.LogoRepository {
	return &logoRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
