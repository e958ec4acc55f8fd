package projects

import (
	"time"

	projectsvc "setu-backend/internal/application/projects"
	"setu-backend/internal/domain"
	"setu-backend/internal/middleware"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *projectsvc.Service
}

type checkpointRequest struct {
	Name          string     `json:"name" validate:"required,max=255"`
	Description   string     `json:"description"`
	IsMandatory   *bool      `json:"is_mandatory"`
	EstimatedDate *time.Time `json:"estimated_date"`
}

type createProjectRequest struct {
	VillageID       string              `json:"village_id" validate:"required,uuid"`
	Title           string              `json:"title" validate:"required,max=255"`
	Description     string              `json:"description"`
	ProjectType     string              `json:"project_type" validate:"required"`
	AllocatedAmount float64             `json:"allocated_amount" validate:"gte=0"`
	StartDate       *time.Time          `json:"start_date"`
	EndDate         *time.Time          `json:"end_date"`
	Checkpoints     []checkpointRequest `json:"checkpoints" validate:"dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func toCheckpointInput(r checkpointRequest) projectsvc.CheckpointInput {
	return projectsvc.CheckpointInput{
		Name:          r.Name,
		Description:   r.Description,
		IsMandatory:   r.IsMandatory,
		EstimatedDate: r.EstimatedDate,
	}
}

// Create POST /api/v1/projects
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createProjectRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	actor, _ := middleware.CurrentUser(c)
	in := projectsvc.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		ProjectType:     domain.ProjectType(req.ProjectType),
		AllocatedAmount: req.AllocatedAmount,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Actor:           actor.UserID,
	}
	in.VillageID, _ = uuid.Parse(req.VillageID)
	for _, cp := range req.Checkpoints {
		in.Checkpoints = append(in.Checkpoints, toCheckpointInput(cp))
	}
	p, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Project created successfully", p, nil)
}

// Get GET /api/v1/projects/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Project fetched successfully", p, nil)
}

// ListByVillage GET /api/v1/villages/:id/projects?status=
func (h *Handlers) ListByVillage(c *fiber.Ctx) error {
	villageID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ListByVillage(c.UserContext(), villageID, c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Projects fetched successfully", out, fiber.Map{"count": len(out)})
}

// UpdateStatus PATCH /api/v1/projects/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req statusRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.UpdateStatus(c.UserContext(), id, domain.ProjectStatus(req.Status))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Project status updated", p, nil)
}

// AddCheckpoint POST /api/v1/projects/:id/checkpoints
func (h *Handlers) AddCheckpoint(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req checkpointRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	cp, err := h.Service.AddCheckpoint(c.UserContext(), id, toCheckpointInput(req))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Checkpoint added", cp, nil)
}

// Completion GET /api/v1/projects/:id/completion
func (h *Handlers) Completion(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	summary, err := h.Service.Completion(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Project completion fetched", summary, nil)
}
