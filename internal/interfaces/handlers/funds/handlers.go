package funds

import (
	fundsvc "setu-backend/internal/application/funds"
	"setu-backend/internal/domain"
	"setu-backend/internal/middleware"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *fundsvc.Service
}

type entryRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"max=500"`
}

// Allocate POST /api/v1/projects/:id/funds/allocate
func (h *Handlers) Allocate(c *fiber.Ctx) error {
	return h.record(c, domain.TransactionAllocation)
}

// Release POST /api/v1/projects/:id/funds/release
func (h *Handlers) Release(c *fiber.Ctx) error {
	return h.record(c, domain.TransactionRelease)
}

func (h *Handlers) record(c *fiber.Ctx, kind domain.TransactionType) error {
	projectID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req entryRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	actor, _ := middleware.CurrentUser(c)
	in := fundsvc.EntryInput{ProjectID: projectID, Amount: req.Amount, Description: req.Description, Actor: actor.UserID}

	var entry *domain.FundTransaction
	if kind == domain.TransactionRelease {
		entry, err = h.Service.Release(c.UserContext(), in)
	} else {
		entry, err = h.Service.Allocate(c.UserContext(), in)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	totals, err := h.Service.GetTotals(c.UserContext(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Fund "+string(kind)+" recorded", fiber.Map{"transaction": entry, "totals": totals}, nil)
}

// Totals GET /api/v1/projects/:id/funds
func (h *Handlers) Totals(c *fiber.Ctx) error {
	projectID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	totals, err := h.Service.GetTotals(c.UserContext(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Fund totals fetched", totals, nil)
}

// Transactions GET /api/v1/projects/:id/funds/transactions
func (h *Handlers) Transactions(c *fiber.Ctx) error {
	projectID, err := request.ParamUUID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ListTransactions(c.UserContext(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Fund transactions fetched", out, fiber.Map{"count": len(out)})
}
