package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shopvision/internal/log"
	"shopvision/internal/services"
)

const friendlyMessage = "Something went wrong. Please try again."

// writeError maps service errors to status codes and a JSON body. Anything
// unrecognised goes to the app ErrorHandler.
func writeError(c *fiber.Ctx, action string, err error) error {
	status, code := fiber.StatusInternalServerError, ""
	var se *services.StoreError
	switch {
	case errors.Is(err, services.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "insufficient_stock"
	case errors.Is(err, services.ErrInvalidLineItem):
		status, code = fiber.StatusBadRequest, "invalid_line_item"
	case errors.Is(err, services.ErrMissingClient):
		status, code = fiber.StatusBadRequest, "missing_client"
	case errors.Is(err, services.ErrValidation):
		status, code = fiber.StatusBadRequest, "validation"
	case errors.Is(err, services.ErrUnknownProduct):
		status, code = fiber.StatusNotFound, "unknown_product"
	case errors.Is(err, services.ErrUnknownClient):
		status, code = fiber.StatusNotFound, "unknown_client"
	case errors.Is(err, services.ErrNotFound):
		status, code = fiber.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrBadCreds):
		status, code = fiber.StatusUnauthorized, "bad_credentials"
	case errors.Is(err, services.ErrEmailTaken):
		status, code = fiber.StatusConflict, "email_taken"
	case errors.As(err, &se):
		status, code = fiber.StatusBadGateway, "store_error"
	default:
		return err
	}

	if status >= fiber.StatusInternalServerError {
		applog.Error(c, action+".fail", err, nil)
	} else {
		applog.Security(c, action+".rejected", map[string]any{"code": code, "reason": err.Error()})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "code": code})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "code": "validation"})
}

// ErrorHandler is the app-wide fallback: log the detail, show the caller a
// friendly message (HTML for pages, JSON for the API).
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := friendlyMessage
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		status, msg = fe.Code, fe.Message
	}
	applog.Error(c, "server.error", err, map[string]any{"status": status})

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(status).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}
