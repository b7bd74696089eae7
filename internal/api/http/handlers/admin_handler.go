package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tarot-service/internal/api/dto"
	"github.com/spec-kit/tarot-service/internal/auth"
	"github.com/spec-kit/tarot-service/internal/repository"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// AdminHandler exposes user administration endpoints. Routes are gated on
// the admin role by the router.
type AdminHandler struct {
	users repository.UserRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users repository.UserRepository) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserPublic, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserPublic(&users[i]))
	}
	return c.JSON(fiber.Map{"users": items, "total": len(items)})
}

// GetUser GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("user", nil)
	}
	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserPublic(user)})
}

// UpdateUserRole PATCH /admin/users/:id.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Role.Valid() {
		return apperrors.NewValidationError("unknown role", nil)
	}
	targetID := c.Params("id")
	if _, err := uuid.Parse(targetID); err != nil {
		return apperrors.NewNotFound("user", nil)
	}
	if targetID == actor.ID {
		return apperrors.NewConflict("cannot change your own role", nil)
	}

	user, err := h.users.UpdateRole(c.UserContext(), targetID, req.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserPublic(user)})
}
