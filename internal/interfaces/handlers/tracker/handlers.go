package tracker

import (
	trackersvc "setu-backend/internal/application/tracker"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *trackersvc.Service
}

// Track GET /api/v1/public/track/:token
// Public and unauthenticated; the response carries no internal ids.
func (h *Handlers) Track(c *fiber.Ctx) error {
	p, err := h.Service.Track(c.UserContext(), c.Params("token"))
	if err != nil {
		return response.FromError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=60")
	return response.Success(c, "Project progress", p, nil)
}
