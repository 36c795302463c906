package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/repository"
	apperrors "github.com/meditrack/ward-api/pkg/errors"
	"github.com/meditrack/ward-api/pkg/logger"
)

// MaxLogoSize is the upload cap for logo images.
const MaxLogoSize = 15 << 20

// Storage persists logo image bytes and returns a serving URL.
type Storage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// Service manages the hospital logo asset. Uploading or activating a
// logo deactivates every other one, so at most one is active.
type Service interface {
	Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader, actorID uuid.UUID) (*model.HospitalLogo, error)
	Get(ctx context.Context, id uuid.UUID) (*model.HospitalLogo, error)
	// GetActive returns the newest active logo, or nil when none is
	// active.
	GetActive(ctx context.Context) (*model.HospitalLogo, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, actorID uuid.UUID) (*model.HospitalLogo, error)
	DeleteActive(ctx context.Context) error
}

type service struct {
	logos   repository.LogoRepository
	storage Storage
	logger  *logger.Logger
}

func NewService(logos repository.LogoRepository, storage Storage, l *logger.Logger) Service {
	return &service{
		logos:   logos,
		storage: storage,
		logger:  l,
	}
}

func (s *service) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader, actorID uuid.UUID) (*model.HospitalLogo, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperrors.NewValidation("Only image files are allowed")
	}
	if size > MaxLogoSize {
		return nil, apperrors.NewValidation("Logo file too large (max 15MB)")
	}

	url, err := s.storage.Save(ctx, filename, io.LimitReader(r, MaxLogoSize))
	if err != nil {
		return nil, apperrors.NewInternal("failed to store logo file", err)
	}

	logo := &model.HospitalLogo{
		Base:     model.Base{ID: uuid.New()},
		Audit:    model.Audit{CreatedBy: actorID},
		Name:     filename,
		ImageURL: url,
		IsActive: true,
	}

	if err := s.logos.Create(ctx, logo); err != nil {
		if rmErr := s.storage.Remove(ctx, url); rmErr != nil {
			s.logger.Error(rmErr, "failed to remove orphaned logo file", "url", url)
		}
		return nil, fmt.Errorf("failed to create logo record: %w", err)
	}

	if err := s.logos.DeactivateAll(ctx, logo.ID); err != nil {
		return nil, fmt.Errorf("failed to deactivate previous logos: %w", err)
	}
	return logo, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.HospitalLogo, error) {
	logo, err := s.logos.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("logo")
		}
		return nil, fmt.Errorf("failed to get logo: %w", err)
	}
	return logo, nil
}

func (s *service) GetActive(ctx context.Context) (*model.HospitalLogo, error) {
	logo, err := s.logos.GetActive(ctx)
	if err != nil {
		// No active logo is not an error; callers render a null logo.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active logo: %w", err)
	}
	return logo, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool, actorID uuid.UUID) (*model.HospitalLogo, error) {
	logo, err := s.logos.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("logo")
		}
		return nil, fmt.Errorf("failed to get logo: %w", err)
	}

	logo.IsActive = active
	logo.UpdatedBy = &actorID
	if err := s.logos.Update(ctx, logo); err != nil {
		return nil, fmt.Errorf("failed to update logo: %w", err)
	}

	if active {
		if err := s.logos.DeactivateAll(ctx, logo.ID); err != nil {
			return nil, fmt.Errorf("failed to deactivate previous logos: %w", err)
		}
	}
	return logo, nil
}

// DeleteActive removes the active logo record and its stored file. The
// file removal is best effort.
func (s *service) DeleteActive(ctx context.Context) error {
	logo, err := s.GetActive(ctx)
	if err != nil {
		return err
	}
	if logo == nil {
		return apperrors.NewNotFound("active logo")
	}

	if err := s.logos.Delete(ctx, logo.ID); err != nil {
		return fmt.Errorf("failed to delete logo: %w", err)
	}

	if err := s.storage.Remove(ctx, logo.ImageURL); err != nil {
		s.logger.Error(err, "failed to remove logo file", "url", logo.ImageURL)
	}
	return nil
}
