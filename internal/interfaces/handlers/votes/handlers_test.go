package votes

import (
	"testing"

	"setu-backend/internal/application/scoring"
	votesvc "setu-backend/internal/application/votes"
	"setu-backend/internal/infrastructure/database/dbtest"
	"setu-backend/internal/interfaces/handlers/handlertest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteLifecycle(t *testing.T) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	h := &Handlers{Service: &votesvc.Service{DB: db, Scores: &scoring.Engine{DB: db, Config: scoring.DefaultConfig()}}}
	app := handlertest.App("volunteer")
	app.Post("/villages/:id/votes", h.Create)
	app.Get("/villages/:id/votes", h.ListByVillage)
	app.Post("/votes/:id/upvote", h.Upvote)
	app.Post("/votes/:id/convert", h.Convert)

	res := handlertest.Do(t, app, "POST", "/villages/"+v.ID.String()+"/votes", map[string]string{
		"required_infrastructure": "Hand pump near school", "category": "water",
	})
	require.Equal(t, fiber.StatusCreated, res.Code, res.Message())
	assert.Equal(t, true, res.Data()["is_volunteer"])
	assert.Equal(t, handlertest.UserID, res.Data()["volunteer_id"])
	id := res.Data()["id"].(string)

	res = handlertest.Do(t, app, "POST", "/votes/"+id+"/upvote", nil)
	require.Equal(t, fiber.StatusOK, res.Code)
	assert.Equal(t, float64(2), res.Data()["total_votes"])

	res = handlertest.Do(t, app, "GET", "/villages/"+v.ID.String()+"/votes", nil)
	assert.Len(t, res.List(), 1)

	res = handlertest.Do(t, app, "POST", "/votes/"+id+"/convert", nil)
	require.Equal(t, fiber.StatusCreated, res.Code, res.Message())
	assert.Equal(t, "water_supply", res.Data()["project_type"])
	assert.Equal(t, "Hand pump near school", res.Data()["title"])

	res = handlertest.Do(t, app, "POST", "/votes/"+id+"/convert", map[string]string{"title": "Again"})
	assert.Equal(t, fiber.StatusConflict, res.Code)

	res = handlertest.Do(t, app, "POST", "/villages/"+v.ID.String()+"/votes", map[string]string{"category": "water"})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)
}
