package services

import (
	"context"
	"time"

	"github.com/ggorockee/coffeemode/pkg/auth"
)

// UploadToken lets the image worker accept a direct upload from the caller
type UploadToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UploadTokenService struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewUploadTokenService(secret string, expireMinutes int) *UploadTokenService {
	if expireMinutes <= 0 {
		expireMinutes = 10
	}
	return &UploadTokenService{
		secret: secret,
		ttl:    time.Duration(expireMinutes) * time.Minute,
		now:    time.Now,
	}
}

// Issue signs a token for the Firebase user uid
func (s *UploadTokenService) Issue(_ context.Context, uid string) (*UploadToken, error) {
	if s.secret == "" {
		return nil, ErrUploadTokensDisabled
	}
	if uid == "" {
		return nil, invalidInput("missing user id")
	}
	token, expiresAt, err := auth.GenerateUploadToken(uid, s.secret, s.ttl, s.now())
	if err != nil {
		return nil, err
	}
	return &UploadToken{Token: token, ExpiresAt: expiresAt}, nil
}
