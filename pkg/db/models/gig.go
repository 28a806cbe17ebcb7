package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gig is a service listing owned by a seller.
type Gig struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title         string    `gorm:"column:title;not null"`
	Description   string    `gorm:"column:description;not null;default:''"`
	SellerID      uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index:gigs_seller_id_idx"`
	SubcategoryID uuid.UUID `gorm:"column:subcategory_id;type:uuid;not null;index:gigs_subcategory_id_idx"`
	Published     bool      `gorm:"column:published;not null;default:false;index:gigs_published_created_at_idx,priority:1"`
	ClickCount    int64     `gorm:"column:click_count;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index:gigs_published_created_at_idx,priority:2"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// GigMedia references a stored image of a gig. The earliest row is the
// gig's primary image.
type GigMedia struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	GigID      uuid.UUID `gorm:"column:gig_id;type:uuid;not null;index:gig_media_gig_id_created_at_idx,priority:1"`
	StorageKey string    `gorm:"column:storage_key;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index:gig_media_gig_id_created_at_idx,priority:2"`
}

func (GigMedia) TableName() string { return "gig_media" }

// Offer is a priced proposal attached to a gig.
type Offer struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	GigID        uuid.UUID       `gorm:"column:gig_id;type:uuid;not null;index:offers_gig_id_idx"`
	SellerID     uuid.UUID       `gorm:"column:seller_id;type:uuid;not null"`
	Title        string          `gorm:"column:title;not null;default:''"`
	Description  string          `gorm:"column:description;not null;default:''"`
	Tier         string          `gorm:"column:tier;not null;default:'standard'"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DeliveryDays int             `gorm:"column:delivery_days;not null;default:0"`
	Revisions    int             `gorm:"column:revisions;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

type Review struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	GigID              uuid.UUID `gorm:"column:gig_id;type:uuid;not null;index:reviews_gig_id_idx"`
	AuthorID           uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	SellerID           uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	CommunicationLevel int       `gorm:"column:communication_level;not null"`
	RecommendToFriend  int       `gorm:"column:recommend_to_friend;not null"`
	ServiceAsDescribed int       `gorm:"column:service_as_described;not null"`
	Comment            string    `gorm:"column:comment;not null;default:''"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

type Order struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	GigID     uuid.UUID  `gorm:"column:gig_id;type:uuid;not null;index:orders_gig_id_idx"`
	BuyerID   uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null"`
	OfferID   *uuid.UUID `gorm:"column:offer_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
