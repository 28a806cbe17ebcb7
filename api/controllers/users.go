package controllers

import (
	"net/http"
	"strings"

	"github.com/gigly/gigly-backend/api/middleware"
	"github.com/gigly/gigly-backend/api/responses"
	"github.com/gigly/gigly-backend/api/validators"
	"github.com/gigly/gigly-backend/internal/users"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
)

// UsersStore syncs the caller's identity into the users table and returns
// the user id.
func UsersStore(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		id, err := svc.Store(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, users.StoreResultDTO{UserID: id})
	}
}

// UsersMe returns the caller's user row, or null when not signed in or not
// yet stored.
func UsersMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		user, err := svc.GetCurrentUser(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

func UsersGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// UsersByUsername looks a user up by the optional username query parameter.
// A missing or blank username yields null.
func UsersByUsername(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			responses.WriteSuccess(w, nil)
			return
		}
		if len(username) > maxUsernameLength {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "username is too long"))
			return
		}

		user, err := svc.GetUserByUsername(ctx, username)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

func UsersLanguages(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		username, err := validators.PathString(r, "username", maxUsernameLength)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		languages, err := svc.GetLanguagesByUsername(ctx, username)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, languages)
	}
}

func UsersCountry(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		username, err := validators.PathString(r, "username", maxUsernameLength)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		country, err := svc.GetCountryByUsername(ctx, username)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, country)
	}
}

// UsersCreateStripe starts payout onboarding and returns the hosted
// onboarding link.
func UsersCreateStripe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		link, err := svc.CreateStripe(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, link)
	}
}

func UsersRefreshStripe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		user, err := svc.RefreshStripeSetup(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}
