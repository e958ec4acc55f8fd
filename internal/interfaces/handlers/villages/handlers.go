package villages

import (
	"strconv"

	villagesvc "setu-backend/internal/application/villages"
	"setu-backend/internal/domain"
	"setu-backend/internal/pkg/apperror"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *villagesvc.Service
}

type createVillageRequest struct {
	Name            string             `json:"name" validate:"required,max=255"`
	State           string             `json:"state" validate:"required,max=100"`
	District        string             `json:"district" validate:"required,max=100"`
	Block           string             `json:"block" validate:"max=100"`
	Population      int                `json:"population" validate:"gte=0"`
	BaselineMetrics map[string]float64 `json:"baseline_metrics"`
}

type metricsRequest struct {
	BaselineMetrics map[string]float64 `json:"baseline_metrics" validate:"required"`
}

func parseMetrics(raw map[string]float64) (domain.BaselineMetrics, error) {
	m, err := domain.ParseBaselineMetrics(raw)
	if err != nil {
		return nil, apperror.Invalid(err.Error())
	}
	return m, nil
}

// Create POST /api/v1/villages
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createVillageRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	metrics, err := parseMetrics(req.BaselineMetrics)
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Create(c.UserContext(), villagesvc.CreateInput{
		Name:            req.Name,
		State:           req.State,
		District:        req.District,
		Block:           req.Block,
		Population:      req.Population,
		BaselineMetrics: metrics,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Village created successfully", v, nil)
}

// List GET /api/v1/villages?state=&district=&active=
func (h *Handlers) List(c *fiber.Ctx) error {
	f := villagesvc.Filter{State: c.Query("state"), District: c.Query("district")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return response.FromError(c, apperror.Invalid("active must be true or false"))
		}
		f.Active = &active
	}
	out, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Villages fetched successfully", out, fiber.Map{"count": len(out)})
}

// Get GET /api/v1/villages/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Village fetched successfully", v, nil)
}

// UpdateMetrics PUT /api/v1/villages/:id/metrics
func (h *Handlers) UpdateMetrics(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req metricsRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	metrics, err := parseMetrics(req.BaselineMetrics)
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.UpdateBaselineMetrics(c.UserContext(), id, metrics)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Baseline metrics updated", v, nil)
}

// Deactivate DELETE /api/v1/villages/:id
func (h *Handlers) Deactivate(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Deactivate(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Village deactivated", nil, nil)
}
