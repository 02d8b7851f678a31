package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kursadbilgin/applytrack/internal/observability"
)

const userIDLocal = "userID"

// Middleware rejects requests without a valid Bearer session token and stores
// the user id in fiber locals and the request context.
func Middleware(verifier *SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or malformed authorization header")
		}

		userID, err := verifier.Verify(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(userIDLocal, userID)
		c.SetUserContext(observability.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside Middleware.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(userIDLocal).(string); ok {
		return v
	}
	return ""
}

// CredentialFromRequest reads the mailbox credential headers.
func CredentialFromRequest(c *fiber.Ctx) Credential {
	return CredentialFromHeaders(c.Get(CredentialHeader), c.Get(CredentialExpiryHeader))
}
