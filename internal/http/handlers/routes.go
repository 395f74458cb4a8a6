package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"shopvision/internal/domain"
	applog "shopvision/internal/log"
)

// Routes mounts every page and API endpoint on app.
func Routes(app *fiber.App, d *Deps) {
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/catalog") })
	app.Get("/catalog", d.CatalogHandler.Page)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1")

	// Public
	api.Get("/catalog", d.CatalogHandler.JSON)
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.InventoryHandler.Check)

	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), d.AuthHandler.Login)

	authed := api.Group("", RequireAuth(d.Auth))
	// Quotes expose cost and profit, so they stay with the back office.
	seller := authed.Group("", RequireRole(domain.RoleSeller))

	seller.Get("/products", d.ProductHandler.List)
	seller.Post("/products", d.ProductHandler.Create)
	seller.Get("/products/:id", d.ProductHandler.Get)
	seller.Patch("/products/:id", d.ProductHandler.Update)
	seller.Delete("/products/:id", d.ProductHandler.Delete)
	seller.Get("/products/:id/availability", d.InventoryHandler.Check)

	seller.Get("/inventory/low-stock", d.InventoryHandler.LowStock)
	seller.Get("/inventory/valuation", d.InventoryHandler.Valuation)

	seller.Post("/purchases", d.PurchaseHandler.Create)
	seller.Get("/purchases", d.PurchaseHandler.List)
	seller.Get("/purchases/:id", d.PurchaseHandler.Get)

	seller.Post("/sales/quote", d.SaleHandler.Quote)
	seller.Post("/sales", d.SaleHandler.Create)
	seller.Get("/sales", d.SaleHandler.List)
	seller.Get("/sales/:id", d.SaleHandler.Get)

	seller.Get("/pricing", d.PricingHandler.Overview)
	seller.Put("/pricing/margin", d.PricingHandler.SetMargin)
	seller.Put("/pricing/overrides/:id", d.PricingHandler.SetOverride)
	seller.Delete("/pricing/overrides/:id", d.PricingHandler.RemoveOverride)

	seller.Get("/clients", d.PricingHandler.ListClients)
	seller.Post("/clients", d.PricingHandler.CreateClient)
	seller.Put("/clients/:id", d.PricingHandler.UpdateClient)
	seller.Get("/catalog/wholesale/:id", d.CatalogHandler.Wholesale)

	seller.Get("/reports/summary", d.ReportHandler.Summary)
	seller.Get("/reports/top-products", d.ReportHandler.TopProducts)
	seller.Get("/reports/sales.xlsx", d.ReportHandler.SalesXLSX)

	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
}
