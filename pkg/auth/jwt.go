// Package auth issues and validates the short-lived HS256 tokens the image
// worker accepts for uploads.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const UploadToken TokenType = "upload"

var (
	ErrEmptySecret      = errors.New("token secret is empty")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// Claims carries the Firebase UID of the uploader in both sub and userId
type Claims struct {
	UserID string    `json:"userId"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

// GenerateUploadToken signs a token for uid that expires after ttl
func GenerateUploadToken(uid, secretKey string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secretKey == "" {
		return "", time.Time{}, ErrEmptySecret
	}
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: uid,
		Type:   UploadToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ValidateUploadToken(tokenString, secretKey string) (*Claims, error) {
	return validateToken(tokenString, secretKey, UploadToken)
}

func validateToken(tokenString, secretKey string, expectedType TokenType) (*Claims, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != expectedType {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}
