package practice

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes: short-lived access, week-long refresh.
const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	errTokenInvalid   = errors.New("invalid token")
	errTokenWrongType = errors.New("wrong token type")
)

// tokenClaims distinguishes access from refresh tokens so a refresh token
// can never authenticate a request directly.
type tokenClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// tokenManager signs and verifies the HS256 token pairs issued to clients.
type tokenManager struct {
	secret []byte
}

func newTokenManager(secret []byte) *tokenManager {
	return &tokenManager{secret: secret}
}

// issuePair mints a fresh access/refresh pair for a user.
func (m *tokenManager) issuePair(userID string) (access, refresh string, err error) {
	access, err = m.sign(userID, "access", accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.sign(userID, "refresh", refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *tokenManager) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// verify parses a token and checks it carries the expected type.
func (m *tokenManager) verify(raw, wantType string) (userID string, err error) {
	token, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errTokenInvalid
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok {
		return "", errTokenInvalid
	}
	if claims.TokenType != wantType {
		return "", errTokenWrongType
	}
	return claims.UserID, nil
}
