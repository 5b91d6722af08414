package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/math-u-t/litedrive/internal/auth"
)

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
}

// SessionInfo godoc
// @Summary      Current session
// @Description  Restores the caller's session from the bearer token and reports who is signed in. A missing or invalid token reports a signed-out session.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func SessionInfo(v *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v == nil {
			return c.JSON(sessionResponse{})
		}

		sess := auth.NewSession(v)
		// An invalid token leaves the session signed out.
		_ = sess.Init(c.UserContext(), auth.BearerToken(c.Get(fiber.HeaderAuthorization)))

		id, ok := sess.User()
		return c.JSON(sessionResponse{Authenticated: ok, UserID: id.Subject})
	}
}
