package scores

import (
	"setu-backend/internal/application/scoring"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Engine *scoring.Engine
}

// VillageScore GET /api/v1/villages/:id/score
func (h *Handlers) VillageScore(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	score, err := h.Engine.GetVillageScore(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Adarsh score fetched", score, nil)
}

// Leaderboard GET /api/v1/scores/leaderboard?limit=
func (h *Handlers) Leaderboard(c *fiber.Ctx) error {
	out, err := h.Engine.Leaderboard(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leaderboard fetched", out, fiber.Map{"count": len(out)})
}

// RecomputeAll POST /api/v1/scores/recompute
func (h *Handlers) RecomputeAll(c *fiber.Ctx) error {
	n, err := h.Engine.RecomputeAll(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Scores recomputed", fiber.Map{"villages": n}, nil)
}
