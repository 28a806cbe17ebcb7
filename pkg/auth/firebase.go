package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/gigly/gigly-backend/pkg/config"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseVerifier validates Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, cfg config.IdentityConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	switch {
	case cfg.FirebaseCredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	case cfg.FirebaseCredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	}

	var appCfg *firebase.Config
	if cfg.FirebaseProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromFirebase(decoded), nil
}

func identityFromFirebase(token *firebaseauth.Token) *Identity {
	claim := func(key string) string {
		if v, ok := token.Claims[key].(string); ok {
			return v
		}
		return ""
	}

	email := claim("email")
	nickname := claim("nickname")
	if nickname == "" {
		nickname = nicknameFromEmail(email)
	}
	if nickname == "" {
		nickname = token.UID
	}

	return &Identity{
		TokenIdentifier: TokenIdentifier(token.Issuer, token.UID),
		Name:            claim("name"),
		Nickname:        nickname,
		PictureURL:      optionalString(claim("picture")),
		Email:           email,
	}
}
