package auth

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks a raw bearer token: signature, expiry, and that the user
// has not logged out or changed password since it was issued.
type Verifier struct {
	Tokens TokenService
	Repo   *Repo // nil skips the token-version check
}

func (v Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims, err := v.Tokens.Parse(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if v.Repo != nil {
		current, found, err := v.Repo.GetTokenVersion(ctx, claims.UserID)
		if err != nil || !found || current != claims.TokenVersion {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer x" value.
func BearerToken(header string) (string, bool) {
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return "", false
	}
	return strings.TrimSpace(header[len("bearer "):]), true
}
