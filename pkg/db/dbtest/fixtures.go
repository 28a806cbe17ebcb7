package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/db/models"
)

// base anchors fixture timestamps so ordering assertions are deterministic.
var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// At returns a fixture timestamp offset by n minutes.
func At(n int) time.Time {
	return base.Add(time.Duration(n) * time.Minute)
}

func MustCreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		TokenIdentifier: "https://auth.test|" + username,
		FullName:        username + " Example",
		Username:        username,
	}
	mustCreate(t, db, user)
	return user
}

func MustCreateSubcategory(t testing.TB, db *gorm.DB, name string) *models.Subcategory {
	t.Helper()
	sub := &models.Subcategory{Name: name}
	mustCreate(t, db, sub)
	return sub
}

// GigOption customizes MustCreateGig.
type GigOption func(*models.Gig)

func Published(p bool) GigOption           { return func(g *models.Gig) { g.Published = p } }
func CreatedAt(ts time.Time) GigOption     { return func(g *models.Gig) { g.CreatedAt = ts } }
func InSubcategory(id uuid.UUID) GigOption { return func(g *models.Gig) { g.SubcategoryID = id } }

func MustCreateGig(t testing.TB, db *gorm.DB, sellerID uuid.UUID, title string, opts ...GigOption) *models.Gig {
	t.Helper()
	gig := &models.Gig{
		Title:         title,
		SellerID:      sellerID,
		SubcategoryID: uuid.New(),
		Published:     true,
	}
	for _, opt := range opts {
		opt(gig)
	}
	mustCreate(t, db, gig)
	return gig
}

func MustCreateMedia(t testing.TB, db *gorm.DB, gigID uuid.UUID, key string, createdAt time.Time) *models.GigMedia {
	t.Helper()
	media := &models.GigMedia{GigID: gigID, StorageKey: key, CreatedAt: createdAt}
	mustCreate(t, db, media)
	return media
}

func MustCreateOffer(t testing.TB, db *gorm.DB, gig *models.Gig, price string, createdAt time.Time) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		GigID:     gig.ID,
		SellerID:  gig.SellerID,
		Title:     "Offer " + price,
		Price:     decimal.RequireFromString(price),
		CreatedAt: createdAt,
	}
	mustCreate(t, db, offer)
	return offer
}

func MustCreateReview(t testing.TB, db *gorm.DB, gig *models.Gig, authorID uuid.UUID, createdAt time.Time) *models.Review {
	t.Helper()
	review := &models.Review{
		GigID:              gig.ID,
		AuthorID:           authorID,
		SellerID:           gig.SellerID,
		CommunicationLevel: 5,
		RecommendToFriend:  4,
		ServiceAsDescribed: 5,
		Comment:            "great work",
		CreatedAt:          createdAt,
	}
	mustCreate(t, db, review)
	return review
}

func MustCreateOrder(t testing.TB, db *gorm.DB, gigID, buyerID uuid.UUID) *models.Order {
	t.Helper()
	order := &models.Order{GigID: gigID, BuyerID: buyerID}
	mustCreate(t, db, order)
	return order
}

func MustCreateFavorite(t testing.TB, db *gorm.DB, userID, gigID uuid.UUID) *models.UserFavorite {
	t.Helper()
	fav := &models.UserFavorite{UserID: userID, GigID: gigID}
	mustCreate(t, db, fav)
	return fav
}

func mustCreate(t testing.TB, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}
