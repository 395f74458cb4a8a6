package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/log"
	"shopvision/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Inv     *services.InventoryService
}

// GET /api/v1/products?q=&category=&low_stock=&inactive=&limit=&offset=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f, field, ok := parseFilter(c, h.Inv.LowThreshold)
	if !ok {
		return badRequest(c, field, "invalid "+field)
	}
	f.IncludeInactive, _ = strconv.ParseBool(c.Query("inactive"))

	ps, err := h.Catalog.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, "products.list", err)
	}
	if ps == nil {
		ps = []domain.Product{}
	}
	return c.JSON(fiber.Map{"products": ps, "count": len(ps)})
}

// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, "products.get", err)
	}
	return c.JSON(p)
}

// POST /api/v1/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	p, err := h.Catalog.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, "products.create", err)
	}
	log.Audit(c, "products.create", map[string]any{"product_id": p.ID, "stock": p.Stock})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PATCH /api/v1/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var u domain.ProductUpdate
	if err := c.BodyParser(&u); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	p, err := h.Catalog.Update(c.UserContext(), id, u)
	if err != nil {
		return writeError(c, "products.update", err)
	}
	log.Audit(c, "products.update", map[string]any{"product_id": id})
	return c.JSON(p)
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	soft, err := h.Catalog.Delete(c.UserContext(), id)
	if err != nil {
		return writeError(c, "products.delete", err)
	}
	log.Audit(c, "products.delete", map[string]any{"product_id": id, "soft": soft})
	return c.JSON(fiber.Map{"id": id, "deactivated": soft})
}
