package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/domain"
)

const identityKey = "auth_identity"

// Identity is the read-only projection of a user carried through one
// request. It is never persisted and never outlives the request.
type Identity struct {
	UserID   int64
	Username string
	Role     domain.Role
}

// SetIdentity attaches the identity to the request scope.
func SetIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(identityKey, id)
}

// ClearIdentity removes the identity from the request scope. Paired with
// SetIdentity by the middleware so a recycled request context never carries
// a stale caller.
func ClearIdentity(c *fiber.Ctx) {
	c.Locals(identityKey, nil)
}

// IdentityFromContext retrieves the authenticated caller, if any.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	id, ok := val.(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}
