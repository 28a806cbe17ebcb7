package controllers

import (
	"net/http"

	"github.com/gigly/gigly-backend/api/middleware"
	"github.com/gigly/gigly-backend/api/responses"
	"github.com/gigly/gigly-backend/api/validators"
	"github.com/gigly/gigly-backend/internal/gigs"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
)

const maxUsernameLength = 64

type gigListQuery struct {
	Search    *string `json:"search" validate:"omitempty,max=200"`
	Favorites *string `json:"favorites" validate:"omitempty,max=64"`
	Filter    *string `json:"filter" validate:"omitempty,max=128"`
}

// GigsList returns the enriched gig listing. Anonymous callers are allowed;
// a signed-in caller additionally gets favorite flags.
func GigsList(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		query := gigListQuery{
			Search:    validators.OptionalQuery(r, "search"),
			Favorites: validators.OptionalQuery(r, "favorites"),
			Filter:    validators.OptionalQuery(r, "filter"),
		}
		if err := validators.Struct(query); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		views, err := svc.List(ctx, gigs.GigQuery{
			Search:    query.Search,
			Favorites: query.Favorites,
			Filter:    query.Filter,
		}, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

// GigsBySeller returns the seller's raw gigs, or null for an unknown seller.
func GigsBySeller(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		sellerName, err := validators.PathString(r, "sellerName", maxUsernameLength)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.GetBySellerName(ctx, sellerName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func GigsWithImages(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		username, err := validators.PathString(r, "sellerUsername", maxUsernameLength)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.GetGigsWithImages(ctx, username)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GigsDashboard returns the caller's gigs with order counts and revenue.
func GigsDashboard(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		result, err := svc.SellerDashboard(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
