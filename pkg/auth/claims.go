package auth

import "github.com/golang-jwt/jwt/v5"

// IdentityTokenPayload captures the profile asserted when minting a token.
type IdentityTokenPayload struct {
	Subject  string
	Name     string
	Nickname string
	Picture  string
	Email    string
}

// IdentityClaims are the OIDC-style claims carried by identity tokens.
type IdentityClaims struct {
	Name              string `json:"name,omitempty"`
	Nickname          string `json:"nickname,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Picture           string `json:"picture,omitempty"`
	Email             string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (c *IdentityClaims) identity() *Identity {
	nickname := c.Nickname
	if nickname == "" {
		nickname = c.PreferredUsername
	}
	if nickname == "" {
		nickname = nicknameFromEmail(c.Email)
	}
	return &Identity{
		TokenIdentifier: TokenIdentifier(c.Issuer, c.Subject),
		Name:            c.Name,
		Nickname:        nickname,
		PictureURL:      optionalString(c.Picture),
		Email:           c.Email,
	}
}
