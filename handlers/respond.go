package handlers

import (
	"errors"
	"log"

	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a storage-level failure and logged as such.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *services.ValidationError
		capacityErr   *services.CapacityError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
		transientErr  *services.TransientError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	case errors.As(err, &capacityErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": capacityErr.Error()})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflictErr.Error()})
	case errors.As(err, &transientErr):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporary storage conflict, retry the request"})
	default:
		log.Printf("ERROR %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
