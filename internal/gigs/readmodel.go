package gigs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/config"
	"github.com/gigly/gigly-backend/pkg/db/models"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
	"github.com/gigly/gigly-backend/pkg/metrics"
	"github.com/gigly/gigly-backend/pkg/storage"
)

const (
	defaultEnrichConcurrency = 8
	sellerNotFoundMessage    = "seller not found"
	listingView              = "listing"
)

type readModelStore interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	PrimaryMedia(ctx context.Context, gigID uuid.UUID) (*models.GigMedia, error)
	ListReviews(ctx context.Context, gigID uuid.UUID) ([]models.Review, error)
	CurrentOffer(ctx context.Context, gigID uuid.UUID) (*models.Offer, error)
}

// FavoriteChecker reports whether a user saved a gig.
type FavoriteChecker interface {
	IsFavorite(ctx context.Context, userID, gigID uuid.UUID) (bool, error)
}

type ReadModelParams struct {
	Store     readModelStore
	Favorites FavoriteChecker
	// Resolver is optional; without it views carry only the storage id.
	Resolver    storage.URLResolver
	Concurrency int
	// StrictSeller fails the whole batch when any seller is missing.
	StrictSeller bool
	// FavoriteKeyMode is config.FavoritesKeyViewer or config.FavoritesKeySeller.
	FavoriteKeyMode string
	Metrics         *metrics.ReadModelMetrics
	Logger          *logger.Logger
}

// ReadModelBuilder turns raw gigs into listing views. Gigs are enriched
// concurrently and the result keeps the input order.
type ReadModelBuilder struct {
	store        readModelStore
	favorites    FavoriteChecker
	resolver     storage.URLResolver
	concurrency  int
	strictSeller bool
	keyBySeller  bool
	metrics      *metrics.ReadModelMetrics
	logg         *logger.Logger
}

func NewReadModelBuilder(params ReadModelParams) (*ReadModelBuilder, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "read model store required")
	}
	if params.Favorites == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "favorite checker required")
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}
	return &ReadModelBuilder{
		store:        params.Store,
		favorites:    params.Favorites,
		resolver:     params.Resolver,
		concurrency:  concurrency,
		strictSeller: params.StrictSeller,
		keyBySeller:  strings.EqualFold(strings.TrimSpace(params.FavoriteKeyMode), config.FavoritesKeySeller),
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Build returns one view per gig, in order. Dependency failures abort the
// batch; a missing seller only marks its own view unless strict.
func (b *ReadModelBuilder) Build(ctx context.Context, gigs []models.Gig, opts BuildOptions) ([]GigView, error) {
	start := time.Now()
	views := make([]GigView, len(gigs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i := range gigs {
		g.Go(func() error {
			view, err := b.buildOne(gctx, gigs[i], opts.Viewer)
			if err != nil {
				return err
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	missing := lo.CountBy(views, func(v GigView) bool { return v.Error != "" })
	b.metrics.AddItems(listingView, metrics.OutcomeOK, len(views)-missing)
	b.metrics.AddItems(listingView, metrics.OutcomeSellerMissing, missing)
	b.metrics.ObserveBatch(listingView, time.Since(start))
	return views, nil
}

func (b *ReadModelBuilder) buildOne(ctx context.Context, gig models.Gig, viewer *Viewer) (GigView, error) {
	view := GigView{GigDTO: GigFromModel(gig), Reviews: []ReviewDTO{}}

	if viewer != nil {
		keyUser := viewer.UserID
		if b.keyBySeller {
			keyUser = gig.SellerID
		}
		favorited, err := b.favorites.IsFavorite(ctx, keyUser, gig.ID)
		if err != nil {
			return GigView{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load favorite")
		}
		view.Favorited = favorited
	}

	media, err := b.store.PrimaryMedia(ctx, gig.ID)
	if err != nil {
		return GigView{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig media")
	}
	if media != nil {
		key := media.StorageKey
		view.StorageID = &key
		view.ImageURL = b.resolveBestEffort(ctx, gig.ID, key)
	}

	seller, err := b.store.FindUserByID(ctx, gig.SellerID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if b.strictSeller {
			return GigView{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, sellerNotFoundMessage)
		}
		view.Error = sellerNotFoundMessage
		if b.logg != nil {
			b.logg.Warn(b.logg.WithGigID(ctx, gig.ID.String()), "gig seller missing")
		}
	case err != nil:
		return GigView{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	default:
		view.Seller = SellerFromModel(seller)
	}

	reviews, err := b.store.ListReviews(ctx, gig.ID)
	if err != nil {
		return GigView{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
	}
	view.Reviews = append(view.Reviews, lo.Map(reviews, reviewFromModel)...)

	offer, err := b.store.CurrentOffer(ctx, gig.ID)
	if err != nil {
		return GigView{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	view.Offer = offerFromModel(offer)

	return view, nil
}

func (b *ReadModelBuilder) resolveBestEffort(ctx context.Context, gigID uuid.UUID, key string) *string {
	if b.resolver == nil {
		return nil
	}
	url, err := b.resolver.ResolveURL(ctx, key)
	if err != nil {
		if b.logg != nil {
			b.logg.Warn(b.logg.WithGigID(ctx, gigID.String()), "resolve gig image url failed: "+err.Error())
		}
		return nil
	}
	return &url
}
