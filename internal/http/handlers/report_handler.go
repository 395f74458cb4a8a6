package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"shopvision/internal/domain"
	"shopvision/internal/log"
	"shopvision/internal/services"
	"shopvision/internal/validate"
)

type ReportHandler struct {
	Reports *services.ReportService
}

// GET /api/v1/reports/summary?from=&to=
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	rng, field, ok := parseRange(c)
	if !ok {
		return badRequest(c, field, "invalid "+field+" date (want YYYY-MM-DD)")
	}
	sum, err := h.Reports.Summary(c.UserContext(), rng)
	if err != nil {
		return writeError(c, "reports.summary", err)
	}
	return c.JSON(sum)
}

// GET /api/v1/reports/top-products?from=&to=&limit=
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	rng, field, ok := parseRange(c)
	if !ok {
		return badRequest(c, field, "invalid "+field+" date (want YYYY-MM-DD)")
	}
	top, err := h.Reports.TopProducts(c.UserContext(), rng, validate.Limit(c.Query("limit"), 10, 100))
	if err != nil {
		return writeError(c, "reports.top_products", err)
	}
	if top == nil {
		top = []domain.TopProduct{}
	}
	return c.JSON(fiber.Map{"products": top})
}

// GET /api/v1/reports/sales.xlsx?from=&to=
func (h *ReportHandler) SalesXLSX(c *fiber.Ctx) error {
	rng, field, ok := parseRange(c)
	if !ok {
		return badRequest(c, field, "invalid "+field+" date (want YYYY-MM-DD)")
	}
	var buf bytes.Buffer
	if err := h.Reports.ExportSalesXLSX(c.UserContext(), rng, &buf); err != nil {
		return writeError(c, "reports.export", err)
	}
	name := fmt.Sprintf("ventas-%s.xlsx", time.Now().UTC().Format("20060102"))
	log.Audit(c, "reports.export", map[string]any{"file": name, "bytes": buf.Len()})
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}
