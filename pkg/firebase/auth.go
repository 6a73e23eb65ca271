// Package firebase verifies Firebase ID tokens presented by app clients.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const defaultCredentialsPath = "secrets/firebase-service-account.json"

var ErrNoCredentials = errors.New("firebase credentials not configured")

// VerifiedToken is the subset of ID token claims the API uses
type VerifiedToken struct {
	UID   string
	Email string
	Name  string
}

// AuthClient wraps the Firebase Admin auth client
type AuthClient struct {
	client *auth.Client
}

// NewAuthClient builds a client from inline JSON credentials (K8s Secret)
// or, when credJSON is empty, from the credentials file at credPath.
func NewAuthClient(ctx context.Context, credJSON, credPath string) (*AuthClient, error) {
	var opt option.ClientOption
	if credJSON != "" {
		var credMap map[string]interface{}
		if err := json.Unmarshal([]byte(credJSON), &credMap); err != nil {
			return nil, fmt.Errorf("invalid JSON in FIREBASE_CREDENTIALS: %w", err)
		}
		opt = option.WithCredentialsJSON([]byte(credJSON))
	} else {
		if credPath == "" {
			credPath = defaultCredentialsPath
		}
		if _, err := os.Stat(credPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not found", ErrNoCredentials, credPath)
		}
		opt = option.WithCredentialsFile(credPath)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firebase auth client: %w", err)
	}
	return &AuthClient{client: client}, nil
}

// VerifyIDToken checks signature, expiry and audience of idToken
func (a *AuthClient) VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error) {
	token, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &VerifiedToken{
		UID:   token.UID,
		Email: claimString(token.Claims, "email"),
		Name:  claimString(token.Claims, "name"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
