package gigs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/db"
	"github.com/gigly/gigly-backend/pkg/db/models"
)

const (
	recentFirst  = "created_at DESC, id DESC"
	storageOrder = "created_at ASC, id ASC"

	fullTextSearchSQL = `SELECT g.* FROM gigs g
WHERE to_tsvector('english', g.title) @@ plainto_tsquery('english', @term)
  AND (@subcategory::uuid IS NULL OR g.subcategory_id = @subcategory::uuid)
ORDER BY ts_rank(to_tsvector('english', g.title), plainto_tsquery('english', @term)) DESC,
         g.created_at DESC, g.id DESC`
)

// Repository reads gigs and the records hanging off them.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindSubcategoryByName returns gorm.ErrRecordNotFound for unknown names.
func (r *Repository) FindSubcategoryByName(ctx context.Context, name string) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// SearchByTitle returns gigs whose title matches term, most relevant first.
// Postgres ranks with full-text search; other dialects fall back to a
// case-insensitive substring match on every term, newest first.
func (r *Repository) SearchByTitle(ctx context.Context, term string, subcategoryID *uuid.UUID) ([]models.Gig, error) {
	var gigs []models.Gig
	if db.IsPostgres(r.db) {
		err := r.db.WithContext(ctx).Raw(fullTextSearchSQL, map[string]any{
			"term":        term,
			"subcategory": subcategoryID,
		}).Scan(&gigs).Error
		return gigs, err
	}

	q := r.db.WithContext(ctx).Model(&models.Gig{})
	for _, word := range strings.Fields(strings.ToLower(term)) {
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(word)+"%")
	}
	if subcategoryID != nil {
		q = q.Where("subcategory_id = ?", *subcategoryID)
	}
	err := q.Order(recentFirst).Find(&gigs).Error
	return gigs, err
}

// ListPublished returns published gigs newest first.
func (r *Repository) ListPublished(ctx context.Context, subcategoryID *uuid.UUID) ([]models.Gig, error) {
	q := r.db.WithContext(ctx).Where("published = ?", true)
	if subcategoryID != nil {
		q = q.Where("subcategory_id = ?", *subcategoryID)
	}
	var gigs []models.Gig
	err := q.Order(recentFirst).Find(&gigs).Error
	return gigs, err
}

// ListBySeller returns a seller's gigs in storage order.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Gig, error) {
	var gigs []models.Gig
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order(storageOrder).
		Find(&gigs).Error
	return gigs, err
}

// ListBySellerRecent returns a seller's gigs newest first.
func (r *Repository) ListBySellerRecent(ctx context.Context, sellerID uuid.UUID) ([]models.Gig, error) {
	var gigs []models.Gig
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order(recentFirst).
		Find(&gigs).Error
	return gigs, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	if err := r.db.WithContext(ctx).First(&gig, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gig, nil
}

// FindUserByID returns gorm.ErrRecordNotFound when the user is missing.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindUserByToken(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("token_identifier = ?", tokenIdentifier).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// PrimaryMedia returns the gig's first media row, or nil when it has none.
func (r *Repository) PrimaryMedia(ctx context.Context, gigID uuid.UUID) (*models.GigMedia, error) {
	var media models.GigMedia
	err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order(storageOrder).
		First(&media).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// ListMedia returns media of the given gigs in storage order.
func (r *Repository) ListMedia(ctx context.Context, gigIDs []uuid.UUID) ([]models.GigMedia, error) {
	if len(gigIDs) == 0 {
		return nil, nil
	}
	var media []models.GigMedia
	err := r.db.WithContext(ctx).
		Where("gig_id IN ?", gigIDs).
		Order(storageOrder).
		Find(&media).Error
	return media, err
}

// ListReviews returns the gig's reviews in storage order.
func (r *Repository) ListReviews(ctx context.Context, gigID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order(storageOrder).
		Find(&reviews).Error
	return reviews, err
}

// OrderCounts returns the number of orders per gig; gigs without orders are
// absent from the map.
func (r *Repository) OrderCounts(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(gigIDs))
	if len(gigIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		GigID uuid.UUID
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("gig_id, COUNT(*) AS total").
		Where("gig_id IN ?", gigIDs).
		Group("gig_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GigID] = row.Total
	}
	return counts, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
