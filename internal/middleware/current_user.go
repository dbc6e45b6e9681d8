package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/utils"
)

// ErrInvalidCredentials is returned by authenticators for unknown users or keys.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserLoader resolves the account behind an authenticated session.
type UserLoader interface {
	GetUser(ctx context.Context, id uint) (models.User, error)
}

// APIKeyAuthenticator resolves the account behind a username and api key pair.
type APIKeyAuthenticator interface {
	AuthenticateAPIKey(ctx context.Context, username, key string) (models.User, error)
}

// LoadUser attaches the account identified by the session to the request.
func LoadUser(loader UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		user, err := loader.GetUser(c.UserContext(), userID)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "unknown user")
		}

		setCurrentUser(c, user)
		return c.Next()
	}
}

// APIKeyAuth authenticates API requests from the username and api_key query
// parameters, or an `Authorization: ApiKey username:key` header. Missing or
// invalid credentials are rejected with 403.
func APIKeyAuth(auth APIKeyAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, key := apiCredentials(c)
		if username == "" || key == "" {
			return utils.SendAPIError(c, fiber.StatusForbidden, "authentication credentials were not provided")
		}

		user, err := auth.AuthenticateAPIKey(c.UserContext(), username, key)
		if err != nil {
			return utils.SendAPIError(c, fiber.StatusForbidden, "invalid username or api key")
		}

		setCurrentUser(c, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated account of the request.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("user").(models.User)
	return user, ok
}

func setCurrentUser(c *fiber.Ctx, user models.User) {
	c.Locals("user", user)
	c.Locals("user_id", user.ID)
	c.Locals("user_role", RoleOf(user))
}
