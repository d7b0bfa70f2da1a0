package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RequireRoles admits callers whose live role is in allowed. A missing
// principal is 401, a role outside the set is 403.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !CanAccessRoute(principal.Role, allowed...) {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}

// RequireActive admits any authenticated caller except EXPIRED accounts.
func RequireActive() fiber.Handler {
	return RequireRoles(ActiveRoles...)
}
