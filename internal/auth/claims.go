// Package auth reads identity hints out of the bearer token. It never
// verifies signatures; the API server is the authority on tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoUserID is returned when the token carries no usable user claim.
var ErrNoUserID = errors.New("auth: token has no user id claim")

// userClaimKeys are checked in order.
var userClaimKeys = []string{"userId", "id", "_id", "sub"}

// UserIDFromToken extracts the user identifier from a JWT's claims.
// A "Bearer " prefix is tolerated.
func UserIDFromToken(token string) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return "", errors.New("auth: token is empty")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("auth: parse token: %w", err)
	}
	for _, k := range userClaimKeys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			return fmt.Sprintf("%.0f", v), nil
		}
	}
	return "", ErrNoUserID
}
