package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
	apperrors "github.com/meditrack/ward-api/pkg/errors"
	"github.com/meditrack/ward-api/pkg/logger"
	"github.com/meditrack/ward-api/pkg/security"
)

const (
	staffRoleName    = "staff"
	roleCacheKey     = "role:staff"
	roleCacheTTL     = 10 * time.Minute
	roleCacheCleanup = 30 * time.Minute
)

// Service is the staff directory. Every member created here belongs to
// the Staff role, resolved once by case-insensitive name and cached.
type Service interface {
	Create(ctx context.Context, req *model.CreateStaffRequest, actorID uuid.UUID) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	users     repository.UserRepository
	hasher    security.PasswordHasher
	roleCache *gocache.Cache
	logger    *logger.Logger
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, l *logger.Logger) Service {
	return &service{
		users:     users,
		hasher:    hasher,
		roleCache: gocache.New(roleCacheTTL, roleCacheCleanup),
		logger:    l,
	}
}

func (s *service) staffRole(ctx context.Context) (*model.Role, error) {
	if cached, ok := s.roleCache.Get(roleCacheKey); ok {
		return cached.(*model.Role), nil
	}

	role, err := s.users.GetRoleByName(ctx, staffRoleName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternal("default 'Staff' role not configured", err)
		}
		return nil, fmt.Errorf("failed to resolve staff role: %w", err)
	}

	s.roleCache.Set(roleCacheKey, role, gocache.DefaultExpiration)
	return role, nil
}

func (s *service) Create(ctx context.Context, req *model.CreateStaffRequest, actorID uuid.UUID) (*model.User, error) {
	role, err := s.staffRole(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, req.Username, req.Email, req.Phone); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.NewInternal("failed to hash password", err)
	}

	user := &model.User{
		Base:           model.Base{ID: uuid.New()},
		RoleID:         role.ID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Username:       req.Username,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		PasswordHash:   hash,
		IsActive:       true,
		CreatedBy:      &actorID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with the pre-insert uniqueness checks.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Username already exists")
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return user, nil
}

func (s *service) checkUnique(ctx context.Context, username string, email, phone *string) error {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return apperrors.NewConflict("Username already exists")
	}

	if email != nil {
		taken, err := s.users.ExistsByEmail(ctx, *email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return apperrors.NewConflict("Email already in use")
		}
	}

	if phone != nil {
		taken, err := s.users.ExistsByPhone(ctx, *phone)
		if err != nil {
			return fmt.Errorf("failed to check phone: %w", err)
		}
		if taken {
			return apperrors.NewConflict("Phone already in use")
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("staff member")
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return user, nil
}

// List returns all members of the Staff role.
func (s *service) List(ctx context.Context) ([]*model.User, error) {
	role, err := s.staffRole(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListByRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return users, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.users.ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, apperrors.NewConflict("Username already exists")
		}
		user.Username = *req.Username
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Specialization != nil {
		user.Specialization = req.Specialization
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperrors.NewInternal("failed to hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("staff member")
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("staff member")
		}
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	return nil
}
