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

func (r *bedRepository) Create(ctx context.Context, bed *model.Bed) error {
	query := `
		INSERT INTO beds (id, bed_name, care_unit_id, is_occupied, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	bed.CreatedAt = time.Now()
	bed.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		bed.ID,
		bed.BedName,
		bed.CareUnitID,
		bed.IsOccupied,
		bed.CreatedBy,
		bed.CreatedAt,
		bed.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create bed: %w", err)
	}
	return nil
}

func (r *bedRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bed, error) {
	query := `SELECT * FROM beds WHERE id = $1`
	var bed model.Bed
	err := r.db.GetContext(ctx, &bed, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bed: %w", err)
	}
	return &bed, nil
}

func (r *bedRepository) GetInCareUnit(ctx context.Context, id, careUnitID uuid.UUID) (*model.Bed, error) {
	query := `SELECT * FROM beds WHERE id = $1 AND care_unit_id = $2`
	var bed model.Bed
	err := r.db.GetContext(ctx, &bed, query, id, careUnitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bed in care unit: %w", err)
	}
	return &bed, nil
}

func (r *bedRepository) List(ctx context.Context, careUnitID uuid.UUID) ([]*model.Bed, error) {
	query := `SELECT * FROM beds WHERE care_unit_id = $1 ORDER BY bed_name`
	var beds []*model.Bed
	err := r.db.SelectContext(ctx, &beds, query, careUnitID)
	return beds, err
}

func (r *bedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM beds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Occupy claims the bed with a conditional update. Zero rows affected
// means the bed was either missing or already occupied; the two cases
// are distinguished with a follow-up read.
func (r *bedRepository) Occupy(ctx context.Context, id, actorID uuid.UUID) error {
	query := `
		UPDATE beds
		SET is_occupied = TRUE, updated_by = $1, updated_at = $2
		WHERE id = $3 AND is_occupied = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, actorID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to occupy bed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to occupy bed: %w", err)
	}
	if n == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrBedOccupied
	}
	return nil
}

func (r *bedRepository) Release(ctx context.Context, id, actorID uuid.UUID) error {
	query := `
		UPDATE beds
		SET is_occupied = FALSE, updated_by = $1, updated_at = $2
		WHERE id = $3
	`
	res, err := r.db.ExecContext(ctx, query, actorID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to release bed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bedRepository) ListOrphanedOccupied(ctx context.Context) ([]*model.Bed, error) {
	query := `
		SELECT b.* FROM beds b
		WHERE b.is_occupied = TRUE
		AND NOT EXISTS (
			SELECT 1 FROM patients p
			WHERE p.bed_id = b.id
			AND p.is_active = TRUE
			AND p.discharged_at IS NULL
		)
	`
	var beds []*model.Bed
	err := r.db.SelectContext(ctx, &beds, query)
	return beds, err
}

func (r *bedRepository) CountOccupied(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM beds WHERE is_occupied = TRUE`)
	return count, err
}
