package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	healthsvc "setu-backend/internal/application/health"
	"setu-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func setup(t *testing.T, db healthsvc.DBPinger) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		Rdb:            rdb,
		Collector:      &healthsvc.Collector{Rdb: rdb, DB: db},
		HealthAdminKey: "secret",
	}
	app := fiber.New()
	app.Get("/health/json", h.JSON)
	app.Get("/health/errors", h.Errors)
	app.Post("/health/reset", h.Reset)
	return app, rdb
}

func get(t *testing.T, app *fiber.App, method, path string) (int, []byte) {
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func TestJSON(t *testing.T) {
	app, _ := setup(t, pinger{})
	code, body := get(t, app, fiber.MethodGet, "/health/json")
	assert.Equal(t, fiber.StatusOK, code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "setu-api", out["service"])
	assert.Equal(t, "ok", out["status"])
}

func TestJSON_DatabaseDown(t *testing.T) {
	app, _ := setup(t, pinger{err: errors.New("refused")})
	code, body := get(t, app, fiber.MethodGet, "/health/json")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "issue", out["status"])
}

func TestErrorsAndReset(t *testing.T) {
	app, rdb := setup(t, pinger{})
	ctx := context.Background()
	require.NoError(t, rdb.LPush(ctx, middleware.KeyErrorLog, `{"path":"/api/v1/villages","status":500}`, "not json").Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqTotal, 3, 0).Err())

	code, body := get(t, app, fiber.MethodGet, "/health/errors")
	assert.Equal(t, fiber.StatusOK, code)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/villages", entries[0]["path"])

	code, _ = get(t, app, fiber.MethodPost, "/health/reset?key=wrong")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = get(t, app, fiber.MethodPost, "/health/reset?key=secret")
	assert.Equal(t, fiber.StatusOK, code)
	n, err := rdb.Exists(ctx, middleware.KeyReqTotal, middleware.KeyErrorLog).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
