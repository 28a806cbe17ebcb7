package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gigly/gigly-backend/api/responses"
	"github.com/gigly/gigly-backend/pkg/auth"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
)

// RequireIdentity rejects requests without a valid bearer token.
func RequireIdentity(verifier auth.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return identity(verifier, logg, true)
}

// OptionalIdentity verifies a bearer token when one is sent and lets
// anonymous requests through. A token that fails verification is rejected.
func OptionalIdentity(verifier auth.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return identity(verifier, logg, false)
}

func identity(verifier auth.Verifier, logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				code := pkgerrors.CodeDependency
				if errors.Is(err, auth.ErrInvalidToken) {
					code = pkgerrors.CodeUnauthorized
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(code, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), id)
			if logg != nil {
				ctx = logg.WithTokenIdentifier(ctx, id.TokenIdentifier)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
