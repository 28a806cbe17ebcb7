package gigs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/db/models"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
)

type gigSelector interface {
	FindSubcategoryByName(ctx context.Context, name string) (*models.Subcategory, error)
	SearchByTitle(ctx context.Context, term string, subcategoryID *uuid.UUID) ([]models.Gig, error)
	ListPublished(ctx context.Context, subcategoryID *uuid.UUID) ([]models.Gig, error)
}

// QueryRouter picks the base gig set for a listing request: a ranked title
// search when a search term is present, otherwise every published gig
// newest first, optionally narrowed to one subcategory.
type QueryRouter struct {
	repo gigSelector
	logg *logger.Logger
}

func NewQueryRouter(repo gigSelector, logg *logger.Logger) (*QueryRouter, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gig repository required")
	}
	return &QueryRouter{repo: repo, logg: logg}, nil
}

// SelectGigs returns the ordered base gigs for q. An unknown subcategory
// filter yields an empty result.
func (r *QueryRouter) SelectGigs(ctx context.Context, q GigQuery) ([]models.Gig, error) {
	if q.Favorites != nil && r.logg != nil {
		// accepted for compatibility; listings are not narrowed by it
		r.logg.Debug(r.logg.WithField(ctx, "favorites", *q.Favorites), "gigs.select favorites param ignored")
	}

	var subcategoryID *uuid.UUID
	if filter := trimmed(q.Filter); filter != "" {
		sub, err := r.repo.FindSubcategoryByName(ctx, filter)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Gig{}, nil
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subcategory")
		}
		subcategoryID = &sub.ID
	}

	var (
		gigs []models.Gig
		err  error
	)
	if search := trimmed(q.Search); search != "" {
		gigs, err = r.repo.SearchByTitle(ctx, search, subcategoryID)
	} else {
		gigs, err = r.repo.ListPublished(ctx, subcategoryID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "select gigs")
	}
	if gigs == nil {
		gigs = []models.Gig{}
	}
	return gigs, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
