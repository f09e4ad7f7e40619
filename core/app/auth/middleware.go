package auth

import (
	"net/http"
	"strings"

	"bookstack/core/config"
	"bookstack/core/router"
	"bookstack/core/types"
)

// Public route prefixes under /api that skip authentication.
var publicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
}

// Middleware resolves the access token from the Authorization header
// or the auth cookie and stores user_id and user_role on the context.
// Requests without a valid token are rejected.
func Middleware(cfg *config.Config) router.Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			for _, p := range publicPaths {
				if strings.HasPrefix(c.Request.URL.Path, p) {
					return next(c)
				}
			}

			tokenString := extractToken(c, cfg.CookieName)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Authentication required"})
			}

			claims, err := ValidateToken(tokenString, cfg.JWTSecret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Invalid or expired token"})
			}

			c.Set("user_id", claims.UserId)
			c.Set("user_role", claims.Role)
			return next(c)
		}
	}
}

func extractToken(c *router.Context, cookieName string) string {
	header := c.Header("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	return ""
}
