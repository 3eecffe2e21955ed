package handlers

import (
	"errors"
	. "vitals/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errorResponse maps domain errors onto the HTTP contract: invalid input
// 400, missing identity 401, absent resource 404, anything else 500.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidDataType),
		errors.Is(err, ErrInvalidMethod),
		errors.Is(err, ErrInvalidRating):
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": err.Error()})
	case errors.Is(err, ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "error", "error": "unauthenticated"})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "error", "error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "internal server error"})
	}
}
