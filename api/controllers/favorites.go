package controllers

import (
	"net/http"

	"github.com/gigly/gigly-backend/api/middleware"
	"github.com/gigly/gigly-backend/api/responses"
	"github.com/gigly/gigly-backend/api/validators"
	"github.com/gigly/gigly-backend/internal/favorites"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
)

// FavoriteAdd marks a gig as favorite for the caller. Repeating the call is
// a no-op.
func FavoriteAdd(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		gigID, err := validators.PathUUID(r, "gigId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Add(ctx, middleware.IdentityFromContext(ctx), gigID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"gig_id": gigID, "favorite": true})
	}
}

func FavoriteRemove(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		gigID, err := validators.PathUUID(r, "gigId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, middleware.IdentityFromContext(ctx), gigID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"gig_id": gigID, "favorite": false})
	}
}
