package middleware

import (
	"go-restaurant-pos/src/services/order/domain"
	"slices"

	"github.com/gofiber/fiber/v2"
)

// RoleHeader carries the staff role verified by the upstream auth gateway.
const RoleHeader = "X-Staff-Role"

// Authenticate attaches the caller's role to the request context. Requests
// without a known role are rejected with 401.
func Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Get(RoleHeader)
		if name == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing "+RoleHeader+" header")
		}
		role, err := domain.ParseRole(name)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.SetUserContext(domain.WithActor(c.UserContext(), role))
		return c.Next()
	}
}

// RequireRoles lets the request through only for the given roles. It must run
// after Authenticate.
func RequireRoles(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := domain.ActorFromContext(c.UserContext())
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing "+RoleHeader+" header")
		}
		if !slices.Contains(roles, role) {
			return fiber.NewError(fiber.StatusForbidden, "role "+role.String()+" is not allowed to do this")
		}
		return c.Next()
	}
}
