package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of a session token and of the cookie
// that carries it.
const TokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalid = errors.New("session token is invalid")
	ErrExpired = errors.New("session token has expired")
)

// Claims is the session token payload. It carries only the user
// identifier; role and profile data are always re-resolved from the
// user store so revoked accounts lose access immediately.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager issues and verifies signed session tokens.
type Manager struct {
	secret string
}

// NewManager creates a session token manager
func NewManager(secret string) *Manager {
	return &Manager{secret: secret}
}

// Issue generates a 7-day session token for a user
func (m *Manager) Issue(userID string) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// Verify validates a token and returns the user identifier it carries.
// Expired tokens return ErrExpired, everything else invalid returns ErrInvalid.
func (m *Manager) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalid
	}

	return claims.UserID, nil
}
