package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shopvision/internal/log"
	"shopvision/internal/services"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// RequireAuth accepts "Authorization: Bearer <jwt>" and stores the caller's
// id, role and email in Locals.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			applog.Security(c, "access.denied.unauthenticated", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		claims, err := auth.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			applog.Security(c, "access.denied.bad_token", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		c.Locals(ctxUserID, claims.UserID)
		c.Locals(ctxRole, claims.Role)
		c.Locals(ctxEmail, claims.Email)
		return c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(ctxRole).(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		applog.Security(c, "access.denied.role", map[string]any{"role": role})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(ctxUserID).(string)
	return id
}
