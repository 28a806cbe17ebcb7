package gigs

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/gigly/gigly-backend/pkg/db/models"
)

// GigQuery selects the base gig set for a listing page.
type GigQuery struct {
	Search    *string
	Favorites *string
	Filter    *string
}

// Viewer is the signed-in user looking at a listing.
type Viewer struct {
	UserID uuid.UUID
}

// BuildOptions carries the per-request inputs of the read model.
type BuildOptions struct {
	Viewer *Viewer
}

// GigDTO is the raw gig shape.
type GigDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	SellerID      uuid.UUID `json:"seller_id"`
	SubcategoryID uuid.UUID `json:"subcategory_id"`
	Published     bool      `json:"published"`
	ClickCount    int64     `json:"click_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func GigFromModel(g models.Gig) GigDTO {
	return GigDTO{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		SellerID:      g.SellerID,
		SubcategoryID: g.SubcategoryID,
		Published:     g.Published,
		ClickCount:    g.ClickCount,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func GigsFromModels(gigs []models.Gig) []GigDTO {
	return lo.Map(gigs, func(g models.Gig, _ int) GigDTO { return GigFromModel(g) })
}

// SellerDTO is the public projection of a gig's seller.
type SellerDTO struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Username        string    `json:"username"`
	Title           string    `json:"title"`
	About           string    `json:"about"`
	ProfileImageURL *string   `json:"profile_image_url"`
}

func SellerFromModel(u *models.User) *SellerDTO {
	if u == nil {
		return nil
	}
	return &SellerDTO{
		ID:              u.ID,
		FullName:        u.FullName,
		Username:        u.Username,
		Title:           u.Title,
		About:           u.About,
		ProfileImageURL: u.ProfileImageURL,
	}
}

type ReviewDTO struct {
	ID                 uuid.UUID `json:"id"`
	AuthorID           uuid.UUID `json:"author_id"`
	CommunicationLevel int       `json:"communication_level"`
	RecommendToFriend  int       `json:"recommend_to_friend"`
	ServiceAsDescribed int       `json:"service_as_described"`
	Comment            string    `json:"comment"`
	CreatedAt          time.Time `json:"created_at"`
}

func reviewFromModel(r models.Review, _ int) ReviewDTO {
	return ReviewDTO{
		ID:                 r.ID,
		AuthorID:           r.AuthorID,
		CommunicationLevel: r.CommunicationLevel,
		RecommendToFriend:  r.RecommendToFriend,
		ServiceAsDescribed: r.ServiceAsDescribed,
		Comment:            r.Comment,
		CreatedAt:          r.CreatedAt,
	}
}

type OfferDTO struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Tier         string          `json:"tier"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"delivery_days"`
	Revisions    int             `json:"revisions"`
	CreatedAt    time.Time       `json:"created_at"`
}

func offerFromModel(o *models.Offer) *OfferDTO {
	if o == nil {
		return nil
	}
	return &OfferDTO{
		ID:           o.ID,
		Title:        o.Title,
		Description:  o.Description,
		Tier:         o.Tier,
		Price:        o.Price,
		DeliveryDays: o.DeliveryDays,
		Revisions:    o.Revisions,
		CreatedAt:    o.CreatedAt,
	}
}

// GigView is the denormalized listing entry. Error is set, and Seller is
// nil, when the gig's seller could not be resolved.
type GigView struct {
	GigDTO
	Favorited bool        `json:"favorited"`
	StorageID *string     `json:"storage_id,omitempty"`
	ImageURL  *string     `json:"image_url,omitempty"`
	Seller    *SellerDTO  `json:"seller"`
	Reviews   []ReviewDTO `json:"reviews"`
	Offer     *OfferDTO   `json:"offer,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// DashboardGig is one row of a seller's dashboard.
type DashboardGig struct {
	GigDTO
	OrderAmount  int64           `json:"order_amount"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	ImageURL     *string         `json:"image_url"`
}

type MediaDTO struct {
	ID         uuid.UUID `json:"id"`
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

// GigWithImages is a gig together with all of its resolved media.
type GigWithImages struct {
	GigDTO
	Images []MediaDTO `json:"images"`
}
