package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "shopvision/internal/log"
)

// AppConfig tunes the middleware stack; zero values pick the defaults.
type AppConfig struct {
	Views        fiber.Views
	BodyLimit    int
	RateMax      int
	RateInterval time.Duration
}

// NewApp builds the fiber app with the shared middleware stack and routes.
func NewApp(d *Deps, cfg AppConfig) *fiber.App {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1 << 20
	}
	if cfg.RateMax <= 0 {
		cfg.RateMax = 120
	}
	if cfg.RateInterval <= 0 {
		cfg.RateInterval = time.Minute
	}

	app := fiber.New(fiber.Config{
		Views:        cfg.Views,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(applog.Access())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateMax,
		Expiration: cfg.RateInterval,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/healthz")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	Routes(app, d)
	return app
}
