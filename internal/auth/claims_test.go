package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestUserIDFromToken(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"userId", jwt.MapClaims{"userId": "u1", "sub": "s"}, "u1"},
		{"id", jwt.MapClaims{"id": "u2"}, "u2"},
		{"mongo id", jwt.MapClaims{"_id": "64f0c2"}, "64f0c2"},
		{"sub", jwt.MapClaims{"sub": "u3"}, "u3"},
		{"numeric", jwt.MapClaims{"id": 42}, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserIDFromToken("Bearer " + sign(t, tt.claims))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserIDFromTokenMissingClaim(t *testing.T) {
	_, err := UserIDFromToken(sign(t, jwt.MapClaims{"role": "admin"}))
	if !errors.Is(err, ErrNoUserID) {
		t.Fatalf("expected ErrNoUserID, got %v", err)
	}
}

func TestUserIDFromTokenGarbage(t *testing.T) {
	if _, err := UserIDFromToken("not-a-jwt"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := UserIDFromToken("  "); err == nil {
		t.Fatal("expected error for empty token")
	}
}
