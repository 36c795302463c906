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

func (r *careUnitRepository) Create(ctx context.Context, unit *model.CareUnit) error {
	query := `
		INSERT INTO care_units (id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		unit.ID,
		unit.Name,
		unit.Description,
		unit.CreatedBy,
		unit.CreatedAt,
		unit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create care unit: %w", err)
	}
	return nil
}

func (r *careUnitRepository) Get(ctx context.Context, id uuid.UUID) (*model.CareUnit, error) {
	query := `SELECT * FROM care_units WHERE id = $1`
	var unit model.CareUnit
	err := r.db.GetContext(ctx, &unit, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get care unit: %w", err)
	}
	return &unit, nil
}

func (r *careUnitRepository) Update(ctx context.Context, unit *model.CareUnit) error {
	query := `
		UPDATE care_units
		SET name = $1, description = $2, updated_by = $3, updated_at = $4
		WHERE id = $5
	`
	res, err := r.db.ExecContext(ctx, query, unit.Name, unit.Description, unit.UpdatedBy, time.Now(), unit.ID)
	if err != nil {
		return fmt.Errorf("failed to update care unit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *careUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM care_units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete care unit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *careUnitRepository) List(ctx context.Context) ([]*model.CareUnit, error) {
	query := `SELECT * FROM care_units ORDER BY created_at DESC`
	var units []*model.CareUnit
	err := r.db.SelectContext(ctx, &units, query)
	return units, err
}

func (r *careUnitRepository) DeleteBeds(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	return r.deleteByCareUnit(ctx, "beds", careUnitID)
}

func (r *careUnitRepository) DeleteFluids(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	return r.deleteByCareUnit(ctx, "fluids", careUnitID)
}

func (r *careUnitRepository) DeleteMedications(ctx context.Context, careUnitID uuid.UUID) (int64, error) {
	return r.deleteByCareUnit(ctx, "medications", careUnitID)
}

func (r *careUnitRepository) deleteByCareUnit(ctx context.Context, table string, careUnitID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE care_unit_id = $1`, table)
	res, err := r.db.ExecContext(ctx, query, careUnitID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s for care unit: %w", table, err)
	}
	return res.RowsAffected()
}
