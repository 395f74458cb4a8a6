package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
	"shopvision/internal/log"
	"shopvision/internal/services"
)

// PricingHandler is the seller's back office: global margin, per-product
// overrides and wholesale clients.
type PricingHandler struct {
	Pricing *services.PricingService
}

// GET /api/v1/pricing
func (h *PricingHandler) Overview(c *fiber.Ctx) error {
	ov, err := h.Pricing.Overview(c.UserContext())
	if err != nil {
		return writeError(c, "pricing.overview", err)
	}
	return c.JSON(ov)
}

// PUT /api/v1/pricing/margin {"margin":"35"}
func (h *PricingHandler) SetMargin(c *fiber.Ctx) error {
	var req struct {
		Margin string `json:"margin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	m, err := h.Pricing.SetMargin(c.UserContext(), req.Margin)
	if err != nil {
		return writeError(c, "pricing.margin", err)
	}
	log.Audit(c, "pricing.margin.set", map[string]any{"margin": m.String()})
	return c.JSON(fiber.Map{"global_margin": m})
}

// PUT /api/v1/pricing/overrides/:id {"price":"19999.99"}
func (h *PricingHandler) SetOverride(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "price", "invalid price")
	}
	ov, err := h.Pricing.SetOverride(c.UserContext(), id, req.Price)
	if err != nil {
		return writeError(c, "pricing.override", err)
	}
	log.Audit(c, "pricing.override.set", map[string]any{"product_id": id, "price": ov.Price.String()})
	return c.JSON(ov)
}

// DELETE /api/v1/pricing/overrides/:id
func (h *PricingHandler) RemoveOverride(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	if err := h.Pricing.RemoveOverride(c.UserContext(), id); err != nil {
		return writeError(c, "pricing.override.remove", err)
	}
	log.Audit(c, "pricing.override.remove", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/clients
func (h *PricingHandler) ListClients(c *fiber.Ctx) error {
	cs, err := h.Pricing.ListClients(c.UserContext())
	if err != nil {
		return writeError(c, "clients.list", err)
	}
	if cs == nil {
		cs = []domain.WholesaleClient{}
	}
	return c.JSON(fiber.Map{"clients": cs})
}

// POST /api/v1/clients
func (h *PricingHandler) CreateClient(c *fiber.Ctx) error {
	var in services.ClientInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	cl, err := h.Pricing.CreateClient(c.UserContext(), in)
	if err != nil {
		return writeError(c, "clients.create", err)
	}
	log.Audit(c, "clients.create", map[string]any{"client_id": cl.ID, "name": cl.Name})
	return c.Status(fiber.StatusCreated).JSON(cl)
}

// PUT /api/v1/clients/:id
func (h *PricingHandler) UpdateClient(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid client id")
	}
	var in services.ClientInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	cl, err := h.Pricing.UpdateClient(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, "clients.update", err)
	}
	log.Audit(c, "clients.update", map[string]any{"client_id": cl.ID})
	return c.JSON(cl)
}
