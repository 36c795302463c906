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

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, role_id, first_name, last_name, username, email, phone,
			specialization, password_hash, is_active, created_by, created_at, updated_at
		) VALUES (
			:id, :role_id, :first_name, :last_name, :username, :email, :phone,
			:specialization, :password_hash, :is_active, :created_by, :created_at, :updated_at
		)
	`
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, user)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getWhere(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetActive(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getWhere(ctx, `SELECT * FROM users WHERE id = $1 AND is_active = TRUE`, id)
}

func (r *userRepository) getWhere(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET first_name = :first_name, last_name = :last_name, username = :username,
			email = :email, phone = :phone, specialization = :specialization,
			password_hash = :password_hash, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id
	`
	user.UpdatedAt = time.Now()

	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) ListByRole(ctx context.Context, roleID uuid.UUID) ([]*model.User, error) {
	query := `SELECT * FROM users WHERE role_id = $1 ORDER BY created_at DESC`
	var users []*model.User
	err := r.db.SelectContext(ctx, &users, query, roleID)
	return users, err
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)`, phone)
}

func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, arg); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	query := `SELECT * FROM roles WHERE LOWER(name) = LOWER($1)`
	var role model.Role
	err := r.db.GetContext(ctx, &role, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}
