package villages

import (
	"testing"

	"setu-backend/internal/application/scoring"
	villagesvc "setu-backend/internal/application/villages"
	"setu-backend/internal/infrastructure/database/dbtest"
	"setu-backend/internal/interfaces/handlers/handlertest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *fiber.App {
	db := dbtest.New(t)
	engine := &scoring.Engine{DB: db, Config: scoring.DefaultConfig()}
	h := &Handlers{Service: &villagesvc.Service{DB: db, Scores: engine}}
	app := handlertest.App("officer")
	app.Post("/villages", h.Create)
	app.Get("/villages", h.List)
	app.Get("/villages/:id", h.Get)
	app.Put("/villages/:id/metrics", h.UpdateMetrics)
	app.Delete("/villages/:id", h.Deactivate)
	return app
}

func TestCreateAndGet(t *testing.T) {
	app := setup(t)
	res := handlertest.Do(t, app, "POST", "/villages", map[string]interface{}{
		"name": "Rampur", "state": "Uttar Pradesh", "district": "Sitapur", "population": 2400,
		"baseline_metrics": map[string]float64{"literacy_rate": 61.5, "schools": 2},
	})
	require.Equal(t, fiber.StatusCreated, res.Code, res.Message())
	id, _ := res.Data()["id"].(string)
	require.NotEmpty(t, id)

	res = handlertest.Do(t, app, "GET", "/villages/"+id, nil)
	assert.Equal(t, fiber.StatusOK, res.Code)
	assert.Equal(t, "Rampur", res.Data()["name"])

	res = handlertest.Do(t, app, "GET", "/villages?state=uttar%20pradesh", nil)
	assert.Equal(t, fiber.StatusOK, res.Code)
	assert.Len(t, res.List(), 1)
}

func TestCreate_Validation(t *testing.T) {
	app := setup(t)
	res := handlertest.Do(t, app, "POST", "/villages", map[string]interface{}{"name": "Rampur"})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)
	assert.Equal(t, "Validation failed", res.Message())

	res = handlertest.Do(t, app, "POST", "/villages", map[string]interface{}{
		"name": "Rampur", "state": "UP", "district": "Sitapur",
		"baseline_metrics": map[string]float64{"happiness": 9},
	})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)
	assert.Contains(t, res.Message(), "happiness")
}

func TestUpdateMetricsAndDeactivate(t *testing.T) {
	app := setup(t)
	res := handlertest.Do(t, app, "POST", "/villages", map[string]interface{}{"name": "Rampur", "state": "UP", "district": "Sitapur"})
	require.Equal(t, fiber.StatusCreated, res.Code)
	id := res.Data()["id"].(string)

	res = handlertest.Do(t, app, "PUT", "/villages/"+id+"/metrics", map[string]interface{}{
		"baseline_metrics": map[string]float64{"infrastructure_score": 70},
	})
	assert.Equal(t, fiber.StatusOK, res.Code, res.Message())

	res = handlertest.Do(t, app, "DELETE", "/villages/"+id, nil)
	assert.Equal(t, fiber.StatusOK, res.Code)
	res = handlertest.Do(t, app, "GET", "/villages", nil)
	assert.Empty(t, res.List())
	res = handlertest.Do(t, app, "GET", "/villages?active=false", nil)
	assert.Len(t, res.List(), 1)

	res = handlertest.Do(t, app, "DELETE", "/villages/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, res.Code)
}
