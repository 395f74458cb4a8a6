package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/log"
	"shopvision/internal/services"
	"shopvision/internal/validate"
)

type PurchaseHandler struct {
	Purchases *services.PurchaseService
}

// POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in domain.PurchaseInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	in.CreatedBy = userID(c)

	p, err := h.Purchases.Apply(c.UserContext(), in)
	if err != nil {
		return writeError(c, "purchases.create", err)
	}
	log.Audit(c, "purchases.create", map[string]any{
		"purchase_id": p.ID,
		"lines":       len(p.Items),
		"total":       p.TotalCost.StringFixed(2),
	})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GET /api/v1/purchases?from=&to=&limit=
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	rng, field, ok := parseRange(c)
	if !ok {
		return badRequest(c, field, "invalid "+field+" date (want YYYY-MM-DD)")
	}
	out, err := h.Purchases.List(c.UserContext(), rng, validate.Limit(c.Query("limit"), 100, 500))
	if err != nil {
		return writeError(c, "purchases.list", err)
	}
	if out == nil {
		out = []domain.Purchase{}
	}
	return c.JSON(fiber.Map{"purchases": out})
}

// GET /api/v1/purchases/:id
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid purchase id")
	}
	p, err := h.Purchases.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, "purchases.get", err)
	}
	return c.JSON(p)
}
