package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/db/models"
)

// UserDTO is the public user shape.
type UserDTO struct {
	ID                         uuid.UUID `json:"id"`
	FullName                   string    `json:"full_name"`
	Username                   string    `json:"username"`
	Title                      string    `json:"title"`
	About                      string    `json:"about"`
	ProfileImageURL            *string   `json:"profile_image_url"`
	StripeAccountID            *string   `json:"stripe_account_id"`
	StripeAccountSetupComplete bool      `json:"stripe_account_setup_complete"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

type LanguageDTO struct {
	ID            uuid.UUID `json:"id"`
	Language      string    `json:"language"`
	LanguageLevel string    `json:"language_level"`
}

type CountryDTO struct {
	ID          uuid.UUID `json:"id"`
	CountryName string    `json:"country_name"`
}

// OnboardingLinkDTO carries the hosted onboarding URL; URL is nil when the
// caller has no user record yet.
type OnboardingLinkDTO struct {
	URL *string `json:"url"`
}

// StoreResultDTO is returned by the sign-in sync.
type StoreResultDTO struct {
	UserID uuid.UUID `json:"user_id"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                         u.ID,
		FullName:                   u.FullName,
		Username:                   u.Username,
		Title:                      u.Title,
		About:                      u.About,
		ProfileImageURL:            u.ProfileImageURL,
		StripeAccountID:            u.StripeAccountID,
		StripeAccountSetupComplete: u.StripeAccountSetupComplete,
		CreatedAt:                  u.CreatedAt,
		UpdatedAt:                  u.UpdatedAt,
	}
}

func languageFromModel(l models.Language, _ int) LanguageDTO {
	return LanguageDTO{ID: l.ID, Language: l.Language, LanguageLevel: l.LanguageLevel}
}

func countryFromModel(c *models.Country) *CountryDTO {
	if c == nil {
		return nil
	}
	return &CountryDTO{ID: c.ID, CountryName: c.CountryName}
}

// newUserFromIdentity builds the row inserted on first sign-in.
func newUserFromIdentity(identity *auth.Identity) *models.User {
	return &models.User{
		TokenIdentifier: identity.TokenIdentifier,
		FullName:        strings.TrimSpace(identity.Name),
		Username:        strings.TrimSpace(identity.Nickname),
		ProfileImageURL: identity.PictureURL,
	}
}
