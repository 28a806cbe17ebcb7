package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a marketplace account, created on first sign-in and keyed by the
// identity provider's token identifier.
type User struct {
	ID                         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TokenIdentifier            string    `gorm:"column:token_identifier;not null;uniqueIndex:users_token_identifier_key"`
	FullName                   string    `gorm:"column:full_name;not null"`
	Username                   string    `gorm:"column:username;not null;uniqueIndex:users_username_key"`
	Title                      string    `gorm:"column:title;not null;default:''"`
	About                      string    `gorm:"column:about;not null;default:''"`
	ProfileImageURL            *string   `gorm:"column:profile_image_url"`
	StripeAccountID            *string   `gorm:"column:stripe_account_id;index:users_stripe_account_id_idx"`
	StripeAccountSetupComplete bool      `gorm:"column:stripe_account_setup_complete;not null;default:false"`
	CreatedAt                  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
