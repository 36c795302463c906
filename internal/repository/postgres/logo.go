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

func (r *logoRepository) Create(ctx context.Context, logo *model.HospitalLogo) error {
	query := `
		INSERT INTO hospital_logos (id, name, image_url, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	logo.CreatedAt = time.Now()
	logo.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		logo.ID,
		logo.Name,
		logo.ImageURL,
		logo.IsActive,
		logo.CreatedBy,
		logo.CreatedAt,
		logo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create logo: %w", err)
	}
	return nil
}

func (r *logoRepository) Get(ctx context.Context, id uuid.UUID) (*model.HospitalLogo, error) {
	query := `SELECT * FROM hospital_logos WHERE id = $1`
	var logo model.HospitalLogo
	err := r.db.GetContext(ctx, &logo, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get logo: %w", err)
	}
	return &logo, nil
}

func (r *logoRepository) GetActive(ctx context.Context) (*model.HospitalLogo, error) {
	query := `SELECT * FROM hospital_logos WHERE is_active = TRUE ORDER BY created_at DESC LIMIT 1`
	var logo model.HospitalLogo
	err := r.db.GetContext(ctx, &logo, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active logo: %w", err)
	}
	return &logo, nil
}

func (r *logoRepository) Update(ctx context.Context, logo *model.HospitalLogo) error {
	query := `
		UPDATE hospital_logos
		SET is_active = $1, updated_by = $2, updated_at = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, logo.IsActive, logo.UpdatedBy, time.Now(), logo.ID)
	if err != nil {
		return fmt.Errorf("failed to update logo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *logoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hospital_logos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete logo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *logoRepository) DeactivateAll(ctx context.Context, exceptID uuid.UUID) error {
	query := `UPDATE hospital_logos SET is_active = FALSE, updated_at = $1 WHERE id <> $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), exceptID); err != nil {
		return fmt.Errorf("failed to deactivate logos: %w", err)
	}
	return nil
}
