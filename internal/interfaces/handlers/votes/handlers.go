package votes

import (
	votesvc "setu-backend/internal/application/votes"
	"setu-backend/internal/domain"
	"setu-backend/internal/middleware"
	"setu-backend/internal/pkg/constants"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *votesvc.Service
}

type createVoteRequest struct {
	RequiredInfrastructure string `json:"required_infrastructure" validate:"required,max=255"`
	Category               string `json:"category" validate:"required,max=64"`
}

type convertRequest struct {
	Title           string  `json:"title" validate:"max=255"`
	ProjectType     string  `json:"project_type"`
	AllocatedAmount float64 `json:"allocated_amount" validate:"gte=0"`
}

// Create POST /api/v1/villages/:id/votes
// The author is recorded as volunteer or employee according to the session role.
func (h *Handlers) Create(c *fiber.Ctx) error {
	villageID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req createVoteRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	in := votesvc.CreateInput{
		VillageID:              villageID,
		RequiredInfrastructure: req.RequiredInfrastructure,
		Category:               req.Category,
	}
	if actor, ok := middleware.CurrentUser(c); ok {
		id := actor.UserID
		if actor.Role == constants.Volunteer {
			in.IsVolunteer = true
			in.VolunteerID = &id
		} else {
			in.EmployeeID = &id
		}
	}
	v, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Priority vote recorded", v, nil)
}

// ListByVillage GET /api/v1/villages/:id/votes
func (h *Handlers) ListByVillage(c *fiber.Ctx) error {
	villageID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ListByVillage(c.UserContext(), villageID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Priority votes fetched", out, fiber.Map{"count": len(out)})
}

// Upvote POST /api/v1/votes/:id/upvote
func (h *Handlers) Upvote(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Upvote(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Vote counted", v, nil)
}

// Convert POST /api/v1/votes/:id/convert
func (h *Handlers) Convert(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req convertRequest
	if len(c.Body()) > 0 {
		if err := request.Bind(c, &req); err != nil {
			return response.FromError(c, err)
		}
	}
	actor, _ := middleware.CurrentUser(c)
	p, err := h.Service.ConvertToProject(c.UserContext(), votesvc.ConvertInput{
		VoteID:          id,
		Title:           req.Title,
		ProjectType:     domain.ProjectType(req.ProjectType),
		AllocatedAmount: req.AllocatedAmount,
		Actor:           actor.UserID,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Priority vote converted to project", p, nil)
}
