package uploads

import (
	"io"

	uploadsvc "setu-backend/internal/application/uploads"
	"setu-backend/internal/pkg/apperror"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
}

// EvidenceURL POST /api/v1/uploads/evidence-url
// The client PUTs the file to uploadUrl, then submits publicUrl as submission media.
func (h *Handlers) EvidenceURL(c *fiber.Ctx) error {
	var req uploadRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.GetSignedUploadURL(c.UserContext(), req.FileName)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}

// Evidence POST /api/v1/uploads/evidence (multipart field "file")
// Photos are downscaled before storage; the stored URL is returned for use in a submission.
func (h *Handlers) Evidence(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.FromError(c, apperror.Invalid("file is required"))
	}
	if fh.Size > uploadsvc.MaxUploadSize {
		return response.FromError(c, uploadsvc.ErrFileTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return response.FromError(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, uploadsvc.MaxUploadSize+1))
	if err != nil {
		return response.FromError(c, err)
	}
	stored, err := h.Service.Store(c.UserContext(), fh.Filename, data)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "File uploaded", stored, nil)
}
