package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/pkg/response"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// Middleware is the request-boundary auth gate. Protected routes fail closed
// with the 401 envelope; the handler is never invoked on failure.
type Middleware struct {
	resolver *Resolver
}

// NewMiddleware constructs the gate.
func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Handle enforces authentication for protected routes. The identity is
// attached before the handler runs and cleared once the response is written,
// whatever the outcome.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	defer ClearIdentity(c)

	id, err := m.resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		if apperrors.IsCredentialError(err) {
			return response.Unauthorized(c, apperrors.ToDomainError(err).Message)
		}
		return err
	}
	if id == nil {
		return response.Unauthorized(c, "no token provided")
	}

	SetIdentity(c, id)
	return c.Next()
}

// OptionalHandle resolves the caller when possible but never rejects:
// public read endpoints treat any resolution failure as anonymous.
func (m *Middleware) OptionalHandle(c *fiber.Ctx) error {
	defer ClearIdentity(c)

	if id := m.resolver.ResolveOptional(c.UserContext(), c.Get(fiber.HeaderAuthorization)); id != nil {
		SetIdentity(c, id)
	}
	return c.Next()
}
