package handler

import (
	"errors"
	"strconv"

	"go-pos-inventory/internal/service"
	"go-pos-inventory/pkg/jwt"
	"go-pos-inventory/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// getUserID reads the authenticated user set by RequireAuth
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "system"
	}
	return userID
}

// parseID reads a UUID route param; on failure the 400 response is already written
func parseID(c *fiber.Ctx, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = c.Status(400).JSON(fiber.Map{"error": "Invalid " + resource + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// bindBody parses a JSON body and checks its validate tags; on failure the response is already written
func bindBody(c *fiber.Ctx, dst interface{}) bool {
	if err := c.BodyParser(dst); err != nil {
		_ = c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		return false
	}
	if errs := validator.ValidateStruct(dst); len(errs) > 0 {
		_ = c.Status(422).JSON(fiber.Map{"error": errs[0].Message(), "field": errs[0].FailedField})
		return false
	}
	return true
}

// queryDays reads ?days=N, falling back to def for missing or non-positive values
func queryDays(c *fiber.Ctx, def int) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		return def
	}
	return days
}

// respondError maps service errors to HTTP statuses
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		stockErr      *service.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(422).JSON(fiber.Map{"error": validationErr.Message, "field": validationErr.Field})
	case errors.As(err, &notFoundErr):
		return c.Status(404).JSON(fiber.Map{"error": notFoundErr.Error()})
	case errors.As(err, &stockErr):
		return c.Status(409).JSON(fiber.Map{
			"error":         stockErr.Error(),
			"ingredient_id": stockErr.IngredientID,
			"ingredient":    stockErr.Ingredient,
			"unit":          stockErr.Unit,
			"needed":        stockErr.Needed,
			"available":     stockErr.Available,
		})
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrSessionTimeout),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, jwt.ErrInvalidToken):
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrWrongPassword):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if log != nil {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
