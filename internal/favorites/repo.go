package favorites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gigly/gigly-backend/pkg/db/models"
)

// Repository encapsulates favorite persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a favorites repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts the favorite and ignores duplicates.
func (r *Repository) Add(ctx context.Context, userID, gigID uuid.UUID) error {
	if userID == uuid.Nil || gigID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "gig_id"}},
			DoNothing: true,
		}).
		Create(&models.UserFavorite{UserID: userID, GigID: gigID}).
		Error
}

// Remove deletes the favorite if it exists.
func (r *Repository) Remove(ctx context.Context, userID, gigID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND gig_id = ?", userID, gigID).
		Delete(&models.UserFavorite{}).
		Error
}

func (r *Repository) Exists(ctx context.Context, userID, gigID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserFavorite{}).
		Where("user_id = ? AND gig_id = ?", userID, gigID).
		Count(&count).Error
	return count > 0, err
}
