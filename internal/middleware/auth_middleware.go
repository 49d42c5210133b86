package middleware

import (
	"errors"
	"strings"

	"bodega-pos/internal/service"
	"bodega-pos/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionKey is the Locals key holding the request's *session.Session.
const SessionKey = "session"

// RequireAuth validates the bearer token and loads the operator session
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		user, err := auth.Authenticate(parts[1])
		if err != nil {
			if errors.Is(err, service.ErrSessionReplaced) || errors.Is(err, service.ErrUserInactive) || errors.Is(err, service.ErrUserNotFound) {
				return c.Status(401).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		sess, err := session.For(user)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		// Downstream handlers read the operator through Session(c)
		c.Locals(SessionKey, sess)

		return c.Next()
	}
}

// Session returns the session loaded by RequireAuth, or nil.
func Session(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(SessionKey).(*session.Session)
	return sess
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := Session(c)
		if sess == nil {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		if sess.Can(requiredPrivilege) {
			return c.Next()
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}
