package auth

import (
	"github.com/gofiber/fiber/v2"
)

// IdentityLocalKey is the Fiber locals key holding the verified Identity.
const IdentityLocalKey = "auth_identity"

// OwnerFunc extracts the owner id a request claims to act for.
type OwnerFunc func(c *fiber.Ctx) string

// OwnerFromQuery reads the userId query parameter.
func OwnerFromQuery(c *fiber.Ctx) string {
	return c.Query("userId")
}

// OwnerFromBody reads userId from a JSON body. The body stays available to the handler.
func OwnerFromBody(c *fiber.Ctx) string {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.App().Config().JSONDecoder(c.Body(), &body); err != nil {
		return ""
	}
	return body.UserID
}

// RequireOwner rejects requests without a valid bearer token (401) and requests whose
// claimed owner is not the token subject (403). An absent owner is left for the
// handler to report as a missing field.
func RequireOwner(v *Verifier, owner OwnerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c.Get(fiber.HeaderAuthorization))
		id, err := v.Verify(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		c.Locals(IdentityLocalKey, id)

		if claimed := owner(c); claimed != "" && claimed != id.Subject {
			return fiber.NewError(fiber.StatusForbidden, "owner mismatch")
		}
		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by RequireOwner, if any.
func IdentityFromCtx(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(Identity)
	return id, ok
}
