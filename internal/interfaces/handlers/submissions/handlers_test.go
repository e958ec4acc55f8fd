package submissions

import (
	"testing"

	"setu-backend/internal/application/scoring"
	submissionsvc "setu-backend/internal/application/submissions"
	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database/dbtest"
	"setu-backend/internal/interfaces/handlers/handlertest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB, *domain.Project) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	p := dbtest.Project(t, db, v.ID, domain.ProjectInProgress, 3)
	h := &Handlers{Service: &submissionsvc.Service{DB: db, Scores: &scoring.Engine{DB: db, Config: scoring.DefaultConfig()}}}
	app := handlertest.App("employee")
	app.Post("/checkpoints/:id/submissions", h.Submit)
	app.Get("/checkpoints/:id/submissions", h.ListByCheckpoint)
	app.Get("/submissions/:id", h.Get)
	app.Post("/submissions/:id/review", h.Review)
	return app, db, p
}

func evidence() map[string]interface{} {
	return map[string]interface{}{
		"media":     []map[string]string{{"url": "https://cdn.example.org/site.jpg", "media_type": "image"}},
		"latitude":  27.57,
		"longitude": 80.68,
		"client_id": "device-1:42",
	}
}

func TestSubmitAndReview(t *testing.T) {
	app, db, p := setup(t)
	cp := p.Checkpoints[0].ID.String()

	res := handlertest.Do(t, app, "POST", "/checkpoints/"+cp+"/submissions", evidence())
	require.Equal(t, fiber.StatusCreated, res.Code, res.Message())
	assert.Equal(t, "pending", res.Data()["status"])
	assert.Equal(t, handlertest.UserID, res.Data()["submitted_by"])
	id := res.Data()["id"].(string)

	replay := handlertest.Do(t, app, "POST", "/checkpoints/"+cp+"/submissions", evidence())
	require.Equal(t, fiber.StatusCreated, replay.Code)
	assert.Equal(t, id, replay.Data()["id"])

	res = handlertest.Do(t, app, "POST", "/submissions/"+id+"/review", map[string]string{"status": "approved", "review_notes": "Verified on site"})
	require.Equal(t, fiber.StatusOK, res.Code, res.Message())
	assert.Equal(t, "approved", res.Data()["status"])

	var stored domain.Project
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 33, stored.CompletionPercentage)

	res = handlertest.Do(t, app, "POST", "/submissions/"+id+"/review", map[string]string{"status": "rejected"})
	assert.Equal(t, fiber.StatusConflict, res.Code)

	res = handlertest.Do(t, app, "GET", "/checkpoints/"+cp+"/submissions", nil)
	assert.Len(t, res.List(), 1)
	res = handlertest.Do(t, app, "GET", "/submissions/"+id, nil)
	assert.Equal(t, fiber.StatusOK, res.Code)
}

func TestSubmit_Validation(t *testing.T) {
	app, _, p := setup(t)
	cp := p.Checkpoints[0].ID.String()

	res := handlertest.Do(t, app, "POST", "/checkpoints/"+cp+"/submissions", map[string]interface{}{"media": []interface{}{}})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)

	body := evidence()
	body["latitude"] = 123.0
	res = handlertest.Do(t, app, "POST", "/checkpoints/"+cp+"/submissions", body)
	assert.Equal(t, fiber.StatusBadRequest, res.Code)

	res = handlertest.Do(t, app, "POST", "/checkpoints/550e8400-e29b-41d4-a716-446655440000/submissions", evidence())
	assert.Equal(t, fiber.StatusNotFound, res.Code)
}

func TestReview_InvalidOutcomeAndMissing(t *testing.T) {
	app, db, p := setup(t)
	sub := dbtest.Submission(t, db, p.Checkpoints[1], domain.SubmissionPending)

	res := handlertest.Do(t, app, "POST", "/submissions/"+sub.ID.String()+"/review", map[string]string{"status": "pending"})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)

	res = handlertest.Do(t, app, "POST", "/submissions/550e8400-e29b-41d4-a716-446655440000/review", map[string]string{"status": "approved"})
	assert.Equal(t, fiber.StatusNotFound, res.Code)
}
