package gigs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/db/models"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/metrics"
	"github.com/gigly/gigly-backend/pkg/storage"
)

const dashboardView = "dashboard"

type dashboardStore interface {
	FindUserByToken(ctx context.Context, tokenIdentifier string) (*models.User, error)
	ListBySellerRecent(ctx context.Context, sellerID uuid.UUID) ([]models.Gig, error)
	OrderCounts(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	RevenueByGig(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	ListMedia(ctx context.Context, gigIDs []uuid.UUID) ([]models.GigMedia, error)
}

// SellerAggregateBuilder assembles the signed-in seller's dashboard.
type SellerAggregateBuilder struct {
	store    dashboardStore
	resolver storage.URLResolver
	metrics  *metrics.ReadModelMetrics
}

func NewSellerAggregateBuilder(store dashboardStore, resolver storage.URLResolver, m *metrics.ReadModelMetrics) (*SellerAggregateBuilder, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dashboard store required")
	}
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "url resolver required")
	}
	return &SellerAggregateBuilder{store: store, resolver: resolver, metrics: m}, nil
}

// SellerDashboard lists the caller's gigs newest first with order counts,
// summed offer revenue and the primary image URL.
func (b *SellerAggregateBuilder) SellerDashboard(ctx context.Context, identity *auth.Identity) ([]DashboardGig, error) {
	if identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthorized")
	}
	start := time.Now()

	user, err := b.store.FindUserByToken(ctx, identity.TokenIdentifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "couldn't authenticate user")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	gigs, err := b.store.ListBySellerRecent(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller gigs")
	}
	if len(gigs) == 0 {
		return []DashboardGig{}, nil
	}

	ids := lo.Map(gigs, func(g models.Gig, _ int) uuid.UUID { return g.ID })

	counts, err := b.store.OrderCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	revenue, err := b.store.RevenueByGig(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum offer revenue")
	}
	media, err := b.store.ListMedia(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig media")
	}
	mediaByGig := lo.GroupBy(media, func(m models.GigMedia) uuid.UUID { return m.GigID })

	out := make([]DashboardGig, 0, len(gigs))
	for _, gig := range gigs {
		row := DashboardGig{
			GigDTO:       GigFromModel(gig),
			OrderAmount:  counts[gig.ID],
			TotalRevenue: revenueOf(revenue, gig.ID),
		}
		if rows := mediaByGig[gig.ID]; len(rows) > 0 {
			url, err := b.resolver.ResolveURL(ctx, rows[0].StorageKey)
			switch {
			case errors.Is(err, storage.ErrObjectNotFound):
			case err != nil:
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve image url")
			default:
				row.ImageURL = &url
			}
		}
		out = append(out, row)
	}

	b.metrics.AddItems(dashboardView, metrics.OutcomeOK, len(out))
	b.metrics.ObserveBatch(dashboardView, time.Since(start))
	return out, nil
}
