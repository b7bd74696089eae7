package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tarot-service/internal/api/dto"
	"github.com/spec-kit/tarot-service/internal/auth"
	"github.com/spec-kit/tarot-service/internal/service"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// AuthHandler exposes registration, login, and role-upgrade endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("email, username, password required", nil)
	}

	user, token, exp, err := h.auth.Register(c.UserContext(), req.Email, req.Username, req.Password, req.Phone)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      dto.NewUserPublic(user),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      dto.NewUserPublic(user),
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"user": dto.NewUserPublic(user)})
}

// Upgrade handles POST /auth/upgrade.
func (h *AuthHandler) Upgrade(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	result, err := h.auth.Upgrade(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":        "upgrade successful, account now has the render role",
		"payment":        result.Payment,
		"upgrade_record": dto.NewUpgradeRecordResponse(result.Record),
		"token":          result.Token,
		"expires_at":     result.Expires,
		"user":           dto.NewUserPublic(result.User),
	})
}

// UpgradeHistory handles GET /auth/upgrade.
func (h *AuthHandler) UpgradeHistory(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	records, canUpgrade, err := h.auth.UpgradeHistory(c.UserContext(), user)
	if err != nil {
		return err
	}

	items := make([]dto.UpgradeRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.NewUpgradeRecordResponse(&records[i]))
	}
	return c.JSON(fiber.Map{
		"upgrade_cost_vnd": service.UpgradeCostVND,
		"current_role":     user.Role,
		"can_upgrade":      canUpgrade,
		"records":          items,
	})
}
