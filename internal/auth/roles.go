package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// RequireRole ensures the authenticated caller holds one of the allowed
// roles. With no arguments it only requires authentication.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		id, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewMissingCredential("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[id.Role]; !exists {
			return apperrors.NewForbiddenAction("insufficient role")
		}
		return c.Next()
	}
}
