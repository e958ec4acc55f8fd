package request

import (
	"setu-backend/internal/pkg/apperror"
	"setu-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Bind parses the JSON body into dst and runs its validate tags.
// Parse failures are InvalidInput; tag failures come back as validation.FieldErrors.
func Bind(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 {
		return apperror.Invalid("Request body is required")
	}
	if err := c.BodyParser(dst); err != nil {
		return &apperror.Error{Kind: apperror.KindInvalidInput, Message: "Invalid request body", Err: err}
	}
	return validation.Struct(dst)
}

// ParamUUID reads a path parameter that must be a UUID.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Invalid("Invalid " + name + " (must be a valid UUID)")
	}
	return id, nil
}
