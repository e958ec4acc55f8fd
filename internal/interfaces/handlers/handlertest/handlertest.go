// Package handlertest wires Fiber apps for handler tests with a session user already in Locals.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"setu-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// UserID is the session user injected by App.
const UserID = "7b0c5d1e-3f1a-4c1e-9a55-0c2b8f4d2e10"

// App returns a Fiber app with the production error handler. When role is non-empty
// every request carries a logged-in session user with that role.
func App(role string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	if role != "" {
		app.Use(func(c *fiber.Ctx) error {
			middleware.SetSessionUser(c, middleware.SessionUser{
				UserID:   UserID,
				Fullname: "Test Officer",
				Email:    "officer@example.org",
				Role:     role,
			})
			return c.Next()
		})
	}
	return app
}

// Result is a decoded response envelope.
type Result struct {
	Code int
	Body map[string]interface{}
}

// Data returns body.data as an object.
func (r Result) Data() map[string]interface{} {
	d, _ := r.Body["data"].(map[string]interface{})
	return d
}

// List returns body.data as an array.
func (r Result) List() []interface{} {
	d, _ := r.Body["data"].([]interface{})
	return d
}

// Message returns the error message, or the success message when there is no error.
func (r Result) Message() string {
	if e, ok := r.Body["error"].(map[string]interface{}); ok {
		m, _ := e["message"].(string)
		return m
	}
	m, _ := r.Body["message"].(string)
	return m
}

// Do sends body (marshalled to JSON when not nil) and decodes the JSON response.
func Do(t *testing.T, app *fiber.App, method, path string, body interface{}) Result {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := Result{Code: resp.StatusCode, Body: map[string]interface{}{}}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}
