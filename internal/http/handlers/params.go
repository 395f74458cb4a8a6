package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/validate"
)

// pathID validates the :id route param.
func pathID(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Params("id"))
}

// parseRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD; both are inclusive days.
func parseRange(c *fiber.Ctx) (domain.DateRange, string, bool) {
	from, ok := validate.Date(c.Query("from"), false)
	if !ok {
		return domain.DateRange{}, "from", false
	}
	to, ok := validate.Date(c.Query("to"), true)
	if !ok {
		return domain.DateRange{}, "to", false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return domain.DateRange{}, "to", false
	}
	return domain.DateRange{From: from, To: to}, "", true
}

// parseFilter reads the catalog query params shared by the product list and
// the storefront. lowStock is the threshold used for ?low_stock=true.
func parseFilter(c *fiber.Ctx, lowStock int) (domain.ProductFilter, string, bool) {
	var f domain.ProductFilter
	if raw := c.Query("q"); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			return f, "q", false
		}
		f.Query = q
	}
	if raw := c.Query("category"); raw != "" {
		cat, ok := validate.Category(raw)
		if !ok {
			return f, "category", false
		}
		f.Category = cat
	}
	if b, _ := strconv.ParseBool(c.Query("low_stock")); b {
		ceiling := lowStock
		f.MaxStock = &ceiling
	}
	if raw := c.Query("limit"); raw != "" {
		f.Limit = validate.Limit(raw, 50, 200)
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, "offset", false
		}
		f.Offset = n
	}
	return f, "", true
}
