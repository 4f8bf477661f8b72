package handlers

import (
	"errors"
	"log/slog"

	"game-hub/apperror"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// writeError maps a service error onto a status code and the public {"error"} body.
// Anything that is not an AppError is logged and reported as a bare 500.
func writeError(c *fiber.Ctx, err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, apperror.ErrUpstream):
		status = fiber.StatusBadGateway
		slog.Warn("upstream failure", "path", c.Path(), "error", err)
	}

	body := fiber.Map{"error": appErr.Message}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the Fiber-level fallback for errors no handler answered,
// such as unknown routes or an oversized body. 5xx detail is never exposed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
