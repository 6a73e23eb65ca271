package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAuthClientWithoutCredentials(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewAuthClient(context.Background(), "", missing)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewAuthClientRejectsInvalidJSON(t *testing.T) {
	_, err := NewAuthClient(context.Background(), "{not json", "")
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestClaimString(t *testing.T) {
	claims := map[string]interface{}{"email": "a@b.c", "name": 42}
	assert.Equal(t, "a@b.c", claimString(claims, "email"))
	assert.Empty(t, claimString(claims, "name"))
	assert.Empty(t, claimString(claims, "picture"))
}
