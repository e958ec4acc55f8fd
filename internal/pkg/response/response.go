package response

import (
	"errors"

	"setu-backend/internal/pkg/apperror"
	"setu-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object. Kind is set for application errors.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Kind       string      `json:"kind,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusOK, message, data, metadata)
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusCreated, message, data, metadata)
}

func send(c *fiber.Ctx, code int, message string, data, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(code).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// Forbidden sends 403 with the same shape as other errors.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden, nil)
}

// FromError writes an application error with the status of its kind.
// Errors that are not *apperror.Error are logged and reported as 500 without leaking the cause.
func FromError(c *fiber.Ctx, err error) error {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{
			Status: statusError,
			Error: ErrorDetail{
				Message:    "Validation failed",
				StatusCode: fiber.StatusBadRequest,
				Kind:       string(apperror.KindInvalidInput),
				Details:    fieldErrs,
			},
		})
	}
	kind := apperror.KindOf(err)
	if kind == "" {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled service error")
		return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var appErr *apperror.Error
	errors.As(err, &appErr)
	message := appErr.Message
	if kind == apperror.KindDependencyUnavailable {
		log.Warn().Err(err).Str("path", c.Path()).Msg("dependency unavailable")
	}
	code := apperror.HTTPStatus(kind)
	return c.Status(code).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: code,
			Kind:       string(kind),
			Details:    map[string]interface{}{},
		},
	})
}
