package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gigly/gigly-backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertIfAbsent inserts the user unless one with the same token identifier
// exists. It reports whether a row was written.
func (r *Repository) InsertIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_identifier"}},
			DoNothing: true,
		}).
		Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindByToken(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("token_identifier = ?", tokenIdentifier).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("username", username).Error
}

// SetStripeAccountIDIfEmpty stores the connected account id unless the user
// already has one. It reports whether this call won.
func (r *Repository) SetStripeAccountIDIfEmpty(ctx context.Context, id uuid.UUID, accountID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND (stripe_account_id IS NULL OR stripe_account_id = '')", id).
		Update("stripe_account_id", accountID)
	return res.RowsAffected > 0, res.Error
}

// UpdateStripeAccountID overwrites the connected account id.
func (r *Repository) UpdateStripeAccountID(ctx context.Context, id uuid.UUID, accountID string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("stripe_account_id", accountID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) UpdateStripeSetup(ctx context.Context, id uuid.UUID, complete bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("stripe_account_setup_complete", complete)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStripeSetupByAccount flags the user owning accountID. Unknown
// accounts return gorm.ErrRecordNotFound.
func (r *Repository) UpdateStripeSetupByAccount(ctx context.Context, accountID string, complete bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("stripe_account_id = ?", accountID).
		Update("stripe_account_setup_complete", complete)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListLanguages returns the user's languages in storage order.
func (r *Repository) ListLanguages(ctx context.Context, userID uuid.UUID) ([]models.Language, error) {
	var languages []models.Language
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&languages).Error
	return languages, err
}

// FindCountry returns nil when the user has not set a country.
func (r *Repository) FindCountry(ctx context.Context, userID uuid.UUID) (*models.Country, error) {
	var country models.Country
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &country, nil
}
