package middleware

import (
	"net/http"
	"strings"

	"bookstack/core/config"
	"bookstack/core/router"
)

// ApplyConfigurableMiddleware installs the middleware enabled in config.
func ApplyConfigurableMiddleware(r *router.Router, cfg *config.MiddlewareConfig) {
	r.Use(Recovery())
}

// Recovery converts handler panics into 500 responses instead of killing the
// connection.
func Recovery() router.Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = c.JSON(http.StatusInternalServerError, map[string]any{
						"error": "Internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}

// CORSMiddleware handles cross-origin requests for the given allowed origins.
// An empty list or "*" entry allows any origin.
func CORSMiddleware(allowedOrigins []string) router.Middleware {
	allowAll := len(allowedOrigins) == 0
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			origins[o] = true
		}
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			origin := c.Request.Header.Get("Origin")
			if origin != "" && (allowAll || origins[origin]) {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Api-Key")
			}
			if c.Request.Method == http.MethodOptions {
				c.Status(http.StatusNoContent)
				return nil
			}
			return next(c)
		}
	}
}
