package middleware

import (
	"context"
	"strings"

	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/ggorockee/coffeemode/pkg/firebase"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// TokenVerifier is satisfied by *firebase.AuthClient
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.VerifiedToken, error)
}

// AuthRequired rejects requests without a valid Firebase ID token.
// A nil verifier means Firebase is not configured.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if verifier == nil {
			return services.ServerError(fiber.StatusServiceUnavailable, "authentication is not configured", nil)
		}

		token, ok := bearerToken(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
		}

		identity, err := verifier.VerifyIDToken(c.UserContext(), token)
		if err != nil {
			logger.GetLogger("auth").Debugw("token verification failed", "error", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth allows both authenticated and unauthenticated requests
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if verifier == nil {
			return c.Next()
		}
		token, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		if identity, err := verifier.VerifyIDToken(c.UserContext(), token); err == nil {
			c.Locals(identityKey, identity)
		}
		return c.Next()
	}
}

// CurrentIdentity returns the verified caller stored by AuthRequired/OptionalAuth
func CurrentIdentity(c *fiber.Ctx) (*firebase.VerifiedToken, bool) {
	identity, ok := c.Locals(identityKey).(*firebase.VerifiedToken)
	return identity, ok && identity != nil
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
