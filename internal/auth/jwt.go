package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
	ErrInvalidUserID = errors.New("invalid user id")
)

// DefaultExpiry applies when no token lifetime is configured.
const DefaultExpiry = 24 * time.Hour

func GenerateToken(secret string, userID uuid.UUID, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidClaims
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidClaims
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidUserID
	}
	return userID, nil
}
