package favorites

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/db/models"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
)

// Directory resolves the gigs and users a favorite points at.
type Directory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	FindUserByToken(ctx context.Context, tokenIdentifier string) (*models.User, error)
}

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Repo      *Repository
	Directory Directory
}

// Service exposes favorite management for signed-in users.
type Service interface {
	Add(ctx context.Context, identity *auth.Identity, gigID uuid.UUID) error
	Remove(ctx context.Context, identity *auth.Identity, gigID uuid.UUID) error
	IsFavorite(ctx context.Context, userID, gigID uuid.UUID) (bool, error)
}

type service struct {
	repo      *Repository
	directory Directory
}

// NewService builds a favorites service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.Directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig directory is required")
	}
	return &service{repo: params.Repo, directory: params.Directory}, nil
}

// Add ensures the gig exists and saves it for the caller. Saving twice is a no-op.
func (s *service) Add(ctx context.Context, identity *auth.Identity, gigID uuid.UUID) error {
	userID, err := s.callerID(ctx, identity)
	if err != nil {
		return err
	}
	if err := s.ensureGig(ctx, gigID); err != nil {
		return err
	}
	if err := s.repo.Add(ctx, userID, gigID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save favorite")
	}
	return nil
}

// Remove drops the favorite regardless of prior state.
func (s *service) Remove(ctx context.Context, identity *auth.Identity, gigID uuid.UUID) error {
	userID, err := s.callerID(ctx, identity)
	if err != nil {
		return err
	}
	if err := s.ensureGig(ctx, gigID); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, userID, gigID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}

func (s *service) IsFavorite(ctx context.Context, userID, gigID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || gigID == uuid.Nil {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, gigID)
}

func (s *service) callerID(ctx context.Context, identity *auth.Identity) (uuid.UUID, error) {
	if identity == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthorized")
	}
	user, err := s.directory.FindUserByToken(ctx, identity.TokenIdentifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "couldn't authenticate user")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user.ID, nil
}

func (s *service) ensureGig(ctx context.Context, gigID uuid.UUID) error {
	if gigID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "gig id is required")
	}
	if _, err := s.directory.FindByID(ctx, gigID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "gig not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig")
	}
	return nil
}
