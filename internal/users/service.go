package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/config"
	"github.com/gigly/gigly-backend/pkg/db"
	"github.com/gigly/gigly-backend/pkg/db/models"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
	"github.com/gigly/gigly-backend/pkg/stripe"
)

const (
	usernameConstraint = "users_username_key"
	// sqlite reports the violated column instead of the index name
	usernameColumn = "users.username"
)

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo     *Repository
	Accounts stripe.ConnectedAccounts
	App      config.AppConfig
	Logger   *logger.Logger
}

// Service exposes user sync, profile lookups and payout onboarding.
type Service interface {
	Store(ctx context.Context, identity *auth.Identity) (uuid.UUID, error)
	GetCurrentUser(ctx context.Context, identity *auth.Identity) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	GetUserByUsername(ctx context.Context, username string) (*UserDTO, error)
	GetLanguagesByUsername(ctx context.Context, username string) ([]LanguageDTO, error)
	GetCountryByUsername(ctx context.Context, username string) (*CountryDTO, error)
	CreateStripe(ctx context.Context, identity *auth.Identity) (OnboardingLinkDTO, error)
	RefreshStripeSetup(ctx context.Context, identity *auth.Identity) (*UserDTO, error)
	UpdateStripeSetup(ctx context.Context, userID uuid.UUID, complete bool) error
	SetStripeAccountID(ctx context.Context, userID uuid.UUID, accountID string) error
}

type service struct {
	repo     *Repository
	accounts stripe.ConnectedAccounts
	app      config.AppConfig
	logg     *logger.Logger
}

// NewService builds a users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe accounts client is required")
	}
	if strings.TrimSpace(params.App.HostingURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hosting url is required")
	}
	return &service{
		repo:     params.Repo,
		accounts: params.Accounts,
		app:      params.App,
		logg:     params.Logger,
	}, nil
}

// Store syncs the signed-in identity into a user row and returns its id.
// Concurrent first sign-ins converge on one row; an existing user's username
// follows the identity nickname.
func (s *service) Store(ctx context.Context, identity *auth.Identity) (uuid.UUID, error) {
	if identity == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "called store user without authentication present")
	}
	nickname := strings.TrimSpace(identity.Nickname)
	if nickname == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "identity nickname is required")
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, newUserFromIdentity(identity))
	if err != nil {
		return uuid.Nil, mapWriteError(err, "insert user")
	}

	user, err := s.repo.FindByToken(ctx, identity.TokenIdentifier)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if !inserted && user.Username != nickname {
		if err := s.repo.UpdateUsername(ctx, user.ID, nickname); err != nil {
			return uuid.Nil, mapWriteError(err, "update username")
		}
	}
	if s.logg != nil && inserted {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user created")
	}
	return user.ID, nil
}

func (s *service) GetCurrentUser(ctx context.Context, identity *auth.Identity) (*UserDTO, error) {
	if identity == nil {
		return nil, nil
	}
	return s.lookup(s.repo.FindByToken(ctx, identity.TokenIdentifier))
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return s.lookup(s.repo.FindByID(ctx, id))
}

// GetUserByUsername returns nil for a blank or unknown username.
func (s *service) GetUserByUsername(ctx context.Context, username string) (*UserDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	return s.lookup(s.repo.FindByUsername(ctx, username))
}

func (s *service) GetLanguagesByUsername(ctx context.Context, username string) ([]LanguageDTO, error) {
	user, err := s.requireByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	languages, err := s.repo.ListLanguages(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list languages")
	}
	return append([]LanguageDTO{}, lo.Map(languages, languageFromModel)...), nil
}

func (s *service) GetCountryByUsername(ctx context.Context, username string) (*CountryDTO, error) {
	user, err := s.requireByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	country, err := s.repo.FindCountry(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load country")
	}
	if country == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "country not found")
	}
	return countryFromModel(country), nil
}

func (s *service) UpdateStripeSetup(ctx context.Context, userID uuid.UUID, complete bool) error {
	if err := s.repo.UpdateStripeSetup(ctx, userID, complete); err != nil {
		return mapUpdateError(err, "update stripe setup")
	}
	return nil
}

func (s *service) SetStripeAccountID(ctx context.Context, userID uuid.UUID, accountID string) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe account id is required")
	}
	if err := s.repo.UpdateStripeAccountID(ctx, userID, accountID); err != nil {
		return mapUpdateError(err, "update stripe account id")
	}
	return nil
}

func (s *service) lookup(user *models.User, err error) (*UserDTO, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) requireByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// requireCaller resolves the signed-in identity to a stored user.
func (s *service) requireCaller(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	if identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthorized")
	}
	user, err := s.repo.FindByToken(ctx, identity.TokenIdentifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "couldn't authenticate user")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func mapWriteError(err error, msg string) error {
	if db.IsUniqueViolation(err, usernameConstraint) || db.IsUniqueViolation(err, usernameColumn) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func mapUpdateError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
