package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gigly/gigly-backend/pkg/config"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	// TokenIdentifier is stable per user and provider ("issuer|subject").
	TokenIdentifier string
	Name            string
	Nickname        string
	PictureURL      *string
	Email           string
}

// Verifier turns a bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// NewVerifier builds the verifier for the configured provider.
func NewVerifier(ctx context.Context, cfg config.IdentityConfig) (Verifier, error) {
	switch cfg.NormalizedProvider() {
	case config.IdentityProviderJWT:
		return NewJWTVerifier(cfg)
	case config.IdentityProviderFirebase:
		return NewFirebaseVerifier(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported identity provider %q", cfg.Provider)
	}
}

// TokenIdentifier joins issuer and subject the way identities are keyed.
func TokenIdentifier(issuer, subject string) string {
	return strings.TrimRight(issuer, "/") + "|" + subject
}

func nicknameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return local
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
