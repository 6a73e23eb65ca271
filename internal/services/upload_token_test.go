package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/ggorockee/coffeemode/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadTokenService(t *testing.T) {
	svc := services.NewUploadTokenService("secret", 10)

	token, err := svc.Issue(context.Background(), "firebase-uid-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), token.ExpiresAt, 5*time.Second)

	// the image worker checks the token with the shared secret
	claims, err := auth.ValidateUploadToken(token.Token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid-1", claims.UserID)
	assert.Equal(t, "firebase-uid-1", claims.Subject)

	_, err = auth.ValidateUploadToken(token.Token, "other-secret")
	assert.Error(t, err)

	_, err = svc.Issue(context.Background(), "")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestUploadTokenServiceDisabled(t *testing.T) {
	svc := services.NewUploadTokenService("", 10)

	_, err := svc.Issue(context.Background(), "uid")
	require.ErrorIs(t, err, services.ErrUploadTokensDisabled)
	assert.Equal(t, http.StatusServiceUnavailable, services.Classify(err).Status)
}
