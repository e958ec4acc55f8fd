package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"setu-backend/internal/pkg/apperror"
	"setu-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, err error) (int, ErrorBody) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return FromError(c, err) })
	resp, e := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, e)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestFromError_AppErrors(t *testing.T) {
	code, body := call(t, fmt.Errorf("review: %w", apperror.Conflict("Submission has already been reviewed")))
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Submission has already been reviewed", body.Error.Message)
	assert.Equal(t, "conflict", body.Error.Kind)

	code, body = call(t, apperror.Unavailable("Media storage unavailable", errors.New("dial tcp")))
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
	assert.Equal(t, "Media storage unavailable", body.Error.Message)
}

func TestFromError_ValidationDetails(t *testing.T) {
	code, body := call(t, validation.FieldErrors{"status": "oneof"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", body.Error.Kind)
	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "oneof", details["status"])
}

func TestFromError_UnknownIsHidden(t *testing.T) {
	code, body := call(t, errors.New("pq: relation does not exist"))
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", body.Error.Message)
}
