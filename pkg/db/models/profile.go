package models

import (
	"time"

	"github.com/google/uuid"
)

// UserFavorite marks a gig as saved by a user.
type UserFavorite struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:user_favorites_user_gig_key,priority:1"`
	GigID     uuid.UUID `gorm:"column:gig_id;type:uuid;not null;uniqueIndex:user_favorites_user_gig_key,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type Language struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:languages_user_id_idx"`
	Language      string    `gorm:"column:language;not null"`
	LanguageLevel string    `gorm:"column:language_level;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

type Country struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:countries_user_id_key"`
	CountryName string    `gorm:"column:country_name;not null"`
}

// All lists every persisted model, used by test fixtures to build schemas.
func All() []any {
	return []any{
		&User{}, &Subcategory{}, &Gig{}, &GigMedia{}, &Offer{},
		&Review{}, &Order{}, &UserFavorite{}, &Language{}, &Country{},
	}
}
