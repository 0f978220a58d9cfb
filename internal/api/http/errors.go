package httpapi

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/export"
	"github.com/i474232898/airquality-dashboard/internal/history"
	"github.com/i474232898/airquality-dashboard/internal/playback"
	"github.com/i474232898/airquality-dashboard/internal/route"
	"github.com/i474232898/airquality-dashboard/internal/session"
	"github.com/i474232898/airquality-dashboard/internal/store"
)

// toHTTPError maps domain errors onto status codes.
func toHTTPError(err error) error {
	var fe *fiber.Error
	var genErr *export.GenerationError

	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, airquality.ErrMissingDeviceCode):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrDeviceNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, playback.ErrViewNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, route.ErrInvalidSpeed):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, playback.ErrViewClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	case errors.Is(err, playback.ErrStaleResponse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidSession):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
	case errors.As(err, &genErr), errors.Is(err, history.ErrTransport):
		log.Printf("ERROR: upstream: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		log.Printf("ERROR: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

// ErrorHandler renders every error as the JSON envelope clients expect.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
