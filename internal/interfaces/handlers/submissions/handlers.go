package submissions

import (
	submissionsvc "setu-backend/internal/application/submissions"
	"setu-backend/internal/domain"
	"setu-backend/internal/middleware"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *submissionsvc.Service
}

type mediaRequest struct {
	URL       string `json:"url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"required,oneof=image video document"`
}

type submitRequest struct {
	Media     []mediaRequest `json:"media" validate:"required,min=1,dive"`
	Notes     *string        `json:"notes"`
	Latitude  *float64       `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64       `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	ClientID  *string        `json:"client_id" validate:"omitempty,max=64"`
}

type reviewRequest struct {
	Status      string  `json:"status" validate:"required,oneof=approved rejected requires_revision"`
	ReviewNotes *string `json:"review_notes"`
}

// Submit POST /api/v1/checkpoints/:id/submissions
// A replay with the same client_id returns the stored submission.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	checkpointID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req submitRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	actor, _ := middleware.CurrentUser(c)
	in := submissionsvc.SubmitInput{
		CheckpointID: checkpointID,
		SubmittedBy:  actor.UserID,
		Notes:        req.Notes,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ClientID:     req.ClientID,
	}
	for _, m := range req.Media {
		in.Media = append(in.Media, submissionsvc.MediaInput{URL: m.URL, MediaType: domain.MediaType(m.MediaType)})
	}
	sub, err := h.Service.Submit(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Submission recorded", sub, nil)
}

// ListByCheckpoint GET /api/v1/checkpoints/:id/submissions
func (h *Handlers) ListByCheckpoint(c *fiber.Ctx) error {
	checkpointID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ListByCheckpoint(c.UserContext(), checkpointID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Submissions fetched successfully", out, fiber.Map{"count": len(out)})
}

// Get GET /api/v1/submissions/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	sub, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Submission fetched successfully", sub, nil)
}

// Review POST /api/v1/submissions/:id/review
func (h *Handlers) Review(c *fiber.Ctx) error {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req reviewRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	actor, _ := middleware.CurrentUser(c)
	sub, err := h.Service.Review(c.UserContext(), submissionsvc.ReviewInput{
		SubmissionID: id,
		Status:       domain.SubmissionStatus(req.Status),
		ReviewerID:   actor.UserID,
		ReviewNotes:  req.ReviewNotes,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Submission reviewed", sub, nil)
}
