package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/log"
	"shopvision/internal/services"
	"shopvision/internal/validate"
)

type SaleHandler struct {
	Sales *services.SaleService
}

func (h *SaleHandler) input(c *fiber.Ctx) (domain.SaleInput, bool) {
	var in domain.SaleInput
	if err := c.BodyParser(&in); err != nil {
		return in, false
	}
	in.UserID = userID(c)
	return in, true
}

// POST /api/v1/sales/quote prices a sale without recording it.
func (h *SaleHandler) Quote(c *fiber.Ctx) error {
	in, ok := h.input(c)
	if !ok {
		return badRequest(c, "body", "invalid request body")
	}
	q, err := h.Sales.Quote(c.UserContext(), in)
	if err != nil {
		return writeError(c, "sales.quote", err)
	}
	return c.JSON(q)
}

// POST /api/v1/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	in, ok := h.input(c)
	if !ok {
		return badRequest(c, "body", "invalid request body")
	}
	sale, err := h.Sales.Apply(c.UserContext(), in)
	if err != nil {
		return writeError(c, "sales.create", err)
	}
	log.Audit(c, "sales.create", map[string]any{
		"sale_id":   sale.ID,
		"sale_type": sale.SaleType,
		"client_id": sale.ClientID,
		"markup":    sale.MarkupPercent.String(),
		"total":     sale.TotalAmount.StringFixed(2),
	})
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GET /api/v1/sales?from=&to=&limit=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	rng, field, ok := parseRange(c)
	if !ok {
		return badRequest(c, field, "invalid "+field+" date (want YYYY-MM-DD)")
	}
	out, err := h.Sales.List(c.UserContext(), rng, validate.Limit(c.Query("limit"), 100, 500))
	if err != nil {
		return writeError(c, "sales.list", err)
	}
	if out == nil {
		out = []domain.Sale{}
	}
	return c.JSON(fiber.Map{"sales": out})
}

// GET /api/v1/sales/:id
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid sale id")
	}
	sale, err := h.Sales.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, "sales.get", err)
	}
	return c.JSON(sale)
}
