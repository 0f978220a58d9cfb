package httpapi

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/airquality-dashboard/internal/session"
)

const sessionKey = "session"

// sessionMiddleware loads the caller's session into c.Locals. With a secret
// configured a valid bearer token is required; without one any bearer token
// is forwarded to the backend as is.
func sessionMiddleware(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))

		if !m.Enabled() {
			if token, ok := strings.CutPrefix(raw, "Bearer "); ok && strings.TrimSpace(token) != "" {
				c.Locals(sessionKey, &session.Session{Token: strings.TrimSpace(token)})
			}
			return c.Next()
		}

		s, err := m.Load(raw)
		if err != nil {
			return toHTTPError(err)
		}
		c.Locals(sessionKey, s)
		return c.Next()
	}
}

// requestContext returns the request's context carrying its session, if any.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if s, ok := c.Locals(sessionKey).(*session.Session); ok && s != nil {
		ctx = session.NewContext(ctx, s)
	}
	return ctx
}
