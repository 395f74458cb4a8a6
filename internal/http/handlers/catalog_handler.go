package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/services"
)

type CatalogHandler struct {
	Store   *services.StorefrontService
	Catalog *services.CatalogService
}

func (h *CatalogHandler) public(c *fiber.Ctx) (domain.Storefront, string, error) {
	f, field, ok := parseFilter(c, h.Store.Inv.LowThreshold)
	if !ok {
		return domain.Storefront{}, field, nil
	}
	sf, err := h.Store.Public(c.UserContext(), f)
	return sf, "", err
}

// GET /catalog renders the public price list.
func (h *CatalogHandler) Page(c *fiber.Ctx) error {
	sf, field, err := h.public(c)
	if field != "" {
		return badRequest(c, field, "invalid "+field)
	}
	if err != nil {
		return err
	}
	// The page still works without the category menu.
	cats, _ := h.Catalog.ListCategories(c.UserContext())
	return render(c, "catalog", fiber.Map{
		"Storefront": sf,
		"Categories": cats,
		"Query":      c.Query("q"),
		"Category":   c.Query("category"),
	})
}

// GET /api/v1/catalog
func (h *CatalogHandler) JSON(c *fiber.Ctx) error {
	sf, field, err := h.public(c)
	if field != "" {
		return badRequest(c, field, "invalid "+field)
	}
	if err != nil {
		return writeError(c, "catalog.list", err)
	}
	return c.JSON(sf)
}

// GET /api/v1/catalog/wholesale/:id prices the catalog for one client.
func (h *CatalogHandler) Wholesale(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid client id")
	}
	f, field, ok := parseFilter(c, h.Store.Inv.LowThreshold)
	if !ok {
		return badRequest(c, field, "invalid "+field)
	}
	sf, err := h.Store.Wholesale(c.UserContext(), id, f)
	if err != nil {
		return writeError(c, "catalog.wholesale", err)
	}
	return c.JSON(sf)
}
