package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	logger           = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "ts"
}

// Setup configures the process logger. Production defaults to info,
// everything else to debug; an explicit level wins over both.
func Setup(env, level string, w io.Writer) {
	lvl := zerolog.DebugLevel
	if env == "production" {
		lvl = zerolog.InfoLevel
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	zerolog.SetGlobalLevel(lvl)
	SetOutput(w)
}

// SetOutput swaps the sink and returns the previous one.
func SetOutput(w io.Writer) io.Writer {
	if w == nil {
		w = os.Stdout
	}
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	logger = zerolog.New(w).With().Timestamp().Logger()
	return prev
}

// Logger returns the process logger for code that runs outside a request.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func write(ev *zerolog.Event, c *fiber.Ctx, action string, err error, fields map[string]any) {
	if ev == nil {
		return
	}
	ev = ev.Str("action", action)
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path())
		if status := c.Response().StatusCode(); status != 0 {
			ev = ev.Int("status", status)
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			ev = ev.Str("user_id", uid)
		}
	}
	if err != nil {
		ev = ev.Str("err", err.Error())
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(Logger().Info(), c, action, nil, fields)
}

// Audit entries are emitted regardless of the configured level.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(Logger().Log().Str("level", "audit"), c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(Logger().Warn(), c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(Logger().Error(), c, action, err, fields)
}

// Access logs one line per request with its latency.
func Access() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		ev := Logger().Info()
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			ev = Logger().Error()
		}
		write(ev.Int64("latency_ms", time.Since(start).Milliseconds()), c, "http.access", err, nil)
		return err
	}
}
