package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/log"
	"shopvision/internal/services"
	"shopvision/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	email, ok := validate.Email(req.Email)
	if !ok || req.Password == "" {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrBadCreds.Error()})
	}

	tok, u, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return writeError(c, "auth.login", err)
	}

	c.Locals(ctxUserID, u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	return c.JSON(fiber.Map{"token": tok, "user": u})
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	if req.Role != "" && req.Role != domain.RoleCustomer {
		log.Security(c, "auth.register.role_denied", map[string]any{"role": req.Role})
	}
	// Self-service accounts are always customers.
	req.Role = domain.RoleCustomer
	u, err := h.Auth.Register(c.UserContext(), req)
	if err != nil {
		return writeError(c, "auth.register", err)
	}
	c.Locals(ctxUserID, u.ID)
	log.Audit(c, "auth.register", map[string]any{"email": u.Email, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(u)
}
