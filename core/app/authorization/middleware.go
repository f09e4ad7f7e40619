package authorization

import (
	"net/http"

	"bookstack/core/router"
	"bookstack/core/types"
)

// RequireRole gates a route behind one of the given role names. It
// expects the auth middleware to have stored "user_role" on the
// context already.
func RequireRole(roles ...string) router.Middleware {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			role := c.GetString("user_role")
			if role == "" {
				return c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Authentication required"})
			}
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "Insufficient permissions"})
			}
			return next(c)
		}
	}
}

// IsAdmin reports whether the authenticated request carries the Admin
// role.
func IsAdmin(c *router.Context) bool {
	return c.GetString("user_role") == RoleAdmin
}
