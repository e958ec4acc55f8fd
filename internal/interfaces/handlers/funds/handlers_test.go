package funds

import (
	"testing"

	fundsvc "setu-backend/internal/application/funds"
	"setu-backend/internal/application/scoring"
	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database/dbtest"
	"setu-backend/internal/interfaces/handlers/handlertest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateReleaseAndTotals(t *testing.T) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	p := dbtest.Project(t, db, v.ID, domain.ProjectSanctioned, 1)
	h := &Handlers{Service: &fundsvc.Service{DB: db, Scores: &scoring.Engine{DB: db, Config: scoring.DefaultConfig()}}}
	app := handlertest.App("officer")
	app.Post("/projects/:id/funds/allocate", h.Allocate)
	app.Post("/projects/:id/funds/release", h.Release)
	app.Get("/projects/:id/funds", h.Totals)
	app.Get("/projects/:id/funds/transactions", h.Transactions)
	base := "/projects/" + p.ID.String() + "/funds"

	res := handlertest.Do(t, app, "POST", base+"/allocate", map[string]interface{}{"amount": 500000, "description": "First instalment"})
	require.Equal(t, fiber.StatusCreated, res.Code, res.Message())

	res = handlertest.Do(t, app, "POST", base+"/release", map[string]interface{}{"amount": 200000})
	require.Equal(t, fiber.StatusCreated, res.Code, res.Message())
	totals, _ := res.Data()["totals"].(map[string]interface{})
	assert.Equal(t, 500000.0, totals["allocated"])
	assert.Equal(t, 200000.0, totals["utilized"])

	res = handlertest.Do(t, app, "POST", base+"/release", map[string]interface{}{"amount": 400000})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)

	res = handlertest.Do(t, app, "POST", base+"/allocate", map[string]interface{}{"amount": -5})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)

	res = handlertest.Do(t, app, "GET", base, nil)
	assert.Equal(t, 300000.0, res.Data()["remaining"])
	res = handlertest.Do(t, app, "GET", base+"/transactions", nil)
	assert.Len(t, res.List(), 2)

	res = handlertest.Do(t, app, "GET", "/projects/550e8400-e29b-41d4-a716-446655440000/funds", nil)
	assert.Equal(t, fiber.StatusNotFound, res.Code)
}
