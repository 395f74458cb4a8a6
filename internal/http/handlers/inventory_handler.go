package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/log"
	"shopvision/internal/services"
	"shopvision/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/v1/availability?productId=...
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	raw := c.Query("productId")
	if raw == "" {
		raw = c.Params("id")
	}
	id, ok := validate.ID(raw)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId", "code": "validation"})
	}
	av, err := h.Inv.CheckAvailability(c.UserContext(), id)
	if err != nil {
		return writeError(c, "inventory.availability", err)
	}
	return c.JSON(av)
}

// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	ps, err := h.Inv.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, "inventory.low_stock", err)
	}
	if ps == nil {
		ps = []domain.Product{}
	}
	return c.JSON(fiber.Map{"threshold": h.Inv.LowThreshold, "products": ps})
}

// GET /api/v1/inventory/valuation
func (h *InventoryHandler) Valuation(c *fiber.Ctx) error {
	v, err := h.Inv.Valuation(c.UserContext())
	if err != nil {
		return writeError(c, "inventory.valuation", err)
	}
	return c.JSON(v)
}
