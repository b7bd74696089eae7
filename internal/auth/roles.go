package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tarot-service/internal/domain"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// RequireRole ensures the authenticated user holds at least the given role
// in the user < render < admin order.
func RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !user.Role.AtLeast(min) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
