package gigs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/db/models"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/storage"
)

type sellerStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Gig, error)
	ListMedia(ctx context.Context, gigIDs []uuid.UUID) ([]models.GigMedia, error)
}

type sellerViews struct {
	store    sellerStore
	resolver storage.URLResolver
}

// bySellerName returns the seller's raw gigs in storage order, or nil when
// no seller has that username.
func (s *sellerViews) bySellerName(ctx context.Context, username string) ([]GigDTO, error) {
	seller, err := s.store.FindUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	gigs, err := s.store.ListBySeller(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller gigs")
	}
	return append([]GigDTO{}, GigsFromModels(gigs)...), nil
}

// withImages resolves every media row of every gig. A media row whose
// object is gone fails the whole request.
func (s *sellerViews) withImages(ctx context.Context, username string) ([]GigWithImages, error) {
	seller, err := s.store.FindUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	gigs, err := s.store.ListBySeller(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller gigs")
	}
	if len(gigs) == 0 {
		return []GigWithImages{}, nil
	}

	media, err := s.store.ListMedia(ctx, lo.Map(gigs, func(g models.Gig, _ int) uuid.UUID { return g.ID }))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig media")
	}
	mediaByGig := lo.GroupBy(media, func(m models.GigMedia) uuid.UUID { return m.GigID })

	out := make([]GigWithImages, 0, len(gigs))
	for _, gig := range gigs {
		images := make([]MediaDTO, 0, len(mediaByGig[gig.ID]))
		for _, m := range mediaByGig[gig.ID] {
			url, err := s.resolver.ResolveURL(ctx, m.StorageKey)
			if errors.Is(err, storage.ErrObjectNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "image not found").
					WithDetails(map[string]any{"gig_id": gig.ID, "media_id": m.ID})
			}
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve image url")
			}
			images = append(images, MediaDTO{
				ID:         m.ID,
				StorageKey: m.StorageKey,
				URL:        url,
				CreatedAt:  m.CreatedAt,
			})
		}
		out = append(out, GigWithImages{GigDTO: GigFromModel(gig), Images: images})
	}
	return out, nil
}
