package users

import (
	usersvc "setu-backend/internal/application/users"
	"setu-backend/internal/middleware"
	"setu-backend/internal/pkg/request"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds the user service and session config for self-registration (session + cookie).
type Handlers struct {
	Service *usersvc.Service
	Config  middleware.SessionConfig
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Fullname string `json:"fullname" validate:"required"`
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Fullname string `json:"fullname" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type updateRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// Register POST /api/v1/users/create-user: public sign-up as viewer, then log the new user in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.CreateUser(c.UserContext(), usersvc.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Fullname: req.Fullname,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
	})
	if err := middleware.TrackSession(c.UserContext(), h.Service.Rdb, u.UserID.String(), sid); err != nil {
		log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("register: session tracking failed")
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sid
	c.Cookie(&cookie)

	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": u}, nil)
}

// Create POST /api/v1/users: an admin provisions an account with a role.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createUserRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.CreateUser(c.UserContext(), usersvc.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Fullname: req.Fullname,
		Role:     req.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": u}, nil)
}

// ViewUser GET /api/v1/users/view-user: the session user's stored profile.
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.ViewUser(c.UserContext(), actor.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User found", fiber.Map{"user": u}, nil)
}

// List GET /api/v1/users?role=
func (h *Handlers) List(c *fiber.Ctx) error {
	out, err := h.Service.List(c.UserContext(), c.Query("role"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users fetched successfully", out, fiber.Map{"count": len(out)})
}

// UpdateRole PATCH /api/v1/users/update-role
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	var req updateRoleRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.UpdateRole(c.UserContext(), usersvc.UpdateRoleInput{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		TargetUserID: req.UserID,
		TargetRole:   req.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User role updated successfully", fiber.Map{"user": u}, nil)
}
