package gigs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/db"
	"github.com/gigly/gigly-backend/pkg/db/models"
)

// Offers are historical price proposals of a gig. Two readings exist and
// nothing else interprets offer rows:
//
//   - the current offer is the most recent one, by (created_at, id) descending;
//   - a gig's revenue is the sum of price over all of its offers.

// CurrentOffer returns the gig's most recent offer, or nil when it has none.
func (r *Repository) CurrentOffer(ctx context.Context, gigID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order(recentFirst).
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// RevenueByGig sums offer prices per gig. Gigs without offers are absent.
func (r *Repository) RevenueByGig(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	revenue := make(map[uuid.UUID]decimal.Decimal, len(gigIDs))
	if len(gigIDs) == 0 {
		return revenue, nil
	}
	if !db.IsPostgres(r.db) {
		return r.revenueByGigExact(ctx, gigIDs, revenue)
	}
	var rows []struct {
		GigID uuid.UUID
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Select("gig_id, SUM(price) AS total").
		Where("gig_id IN ?", gigIDs).
		Group("gig_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		revenue[row.GigID] = row.Total
	}
	return revenue, nil
}

// revenueByGigExact adds prices in Go. SQLite sums NUMERIC columns as
// floating point, so each price is read back as text instead.
func (r *Repository) revenueByGigExact(ctx context.Context, gigIDs []uuid.UUID, revenue map[uuid.UUID]decimal.Decimal) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		GigID uuid.UUID
		Price decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Select("gig_id, CAST(price AS TEXT) AS price").
		Where("gig_id IN ?", gigIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		revenue[row.GigID] = revenueOf(revenue, row.GigID).Add(row.Price)
	}
	return revenue, nil
}

// revenueOf reads a gig's revenue, defaulting to zero.
func revenueOf(revenue map[uuid.UUID]decimal.Decimal, gigID uuid.UUID) decimal.Decimal {
	if total, ok := revenue[gigID]; ok {
		return total
	}
	return decimal.Zero
}
