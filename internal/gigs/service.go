package gigs

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/config"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
	"github.com/gigly/gigly-backend/pkg/metrics"
	"github.com/gigly/gigly-backend/pkg/storage"
)

// ServiceParams groups dependencies for the gigs service.
type ServiceParams struct {
	Repo      *Repository
	Favorites FavoriteChecker
	Resolver  storage.URLResolver
	Config    config.GigsConfig
	Metrics   *metrics.ReadModelMetrics
	Logger    *logger.Logger
}

// Service exposes the gig read side: listings, seller pages and the seller
// dashboard.
type Service interface {
	List(ctx context.Context, query GigQuery, identity *auth.Identity) ([]GigView, error)
	GetBySellerName(ctx context.Context, username string) ([]GigDTO, error)
	GetGigsWithImages(ctx context.Context, username string) ([]GigWithImages, error)
	SellerDashboard(ctx context.Context, identity *auth.Identity) ([]DashboardGig, error)
}

type service struct {
	repo        *Repository
	router      *QueryRouter
	builder     *ReadModelBuilder
	dashboard   *SellerAggregateBuilder
	sellers     *sellerViews
	keyBySeller bool
}

// NewService builds a gigs service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig repo is required")
	}
	if params.Resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "url resolver is required")
	}

	router, err := NewQueryRouter(params.Repo, params.Logger)
	if err != nil {
		return nil, err
	}
	builder, err := NewReadModelBuilder(ReadModelParams{
		Store:           params.Repo,
		Favorites:       params.Favorites,
		Resolver:        params.Resolver,
		Concurrency:     params.Config.EnrichConcurrency,
		StrictSeller:    params.Config.StrictSeller,
		FavoriteKeyMode: params.Config.FavoritesKeyMode,
		Metrics:         params.Metrics,
		Logger:          params.Logger,
	})
	if err != nil {
		return nil, err
	}
	dashboard, err := NewSellerAggregateBuilder(params.Repo, params.Resolver, params.Metrics)
	if err != nil {
		return nil, err
	}

	return &service{
		repo:        params.Repo,
		router:      router,
		builder:     builder,
		dashboard:   dashboard,
		sellers:     &sellerViews{store: params.Repo, resolver: params.Resolver},
		keyBySeller: strings.EqualFold(strings.TrimSpace(params.Config.FavoritesKeyMode), config.FavoritesKeySeller),
	}, nil
}

// List selects gigs for the query and enriches them for the caller.
func (s *service) List(ctx context.Context, query GigQuery, identity *auth.Identity) ([]GigView, error) {
	gigs, err := s.router.SelectGigs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(gigs) == 0 {
		return []GigView{}, nil
	}

	viewer, err := s.resolveViewer(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(ctx, gigs, BuildOptions{Viewer: viewer})
}

// resolveViewer maps the identity onto a stored user. In seller-keyed mode
// any signed-in caller counts as a viewer, even before their first sync.
func (s *service) resolveViewer(ctx context.Context, identity *auth.Identity) (*Viewer, error) {
	if identity == nil {
		return nil, nil
	}
	user, err := s.repo.FindUserByToken(ctx, identity.TokenIdentifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if s.keyBySeller {
			return &Viewer{}, nil
		}
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load viewer")
	}
	return &Viewer{UserID: user.ID}, nil
}

func (s *service) GetBySellerName(ctx context.Context, username string) ([]GigDTO, error) {
	return s.sellers.bySellerName(ctx, strings.TrimSpace(username))
}

func (s *service) GetGigsWithImages(ctx context.Context, username string) ([]GigWithImages, error) {
	return s.sellers.withImages(ctx, strings.TrimSpace(username))
}

func (s *service) SellerDashboard(ctx context.Context, identity *auth.Identity) ([]DashboardGig, error) {
	return s.dashboard.SellerDashboard(ctx, identity)
}
