package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(r *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func bodyOf(s string) *strings.Reader {
	return strings.NewReader(s)
}

func TestRouting(t *testing.T) {
	t.Run("static route", func(t *testing.T) {
		r := New()
		r.GET("/health", func(c *Context) error {
			return c.JSON(200, map[string]string{"status": "ok"})
		})

		rec := doRequest(r, "GET", "/health")
		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	})

	t.Run("path parameters", func(t *testing.T) {
		r := New()
		r.GET("/books/:id", func(c *Context) error {
			return c.JSON(200, map[string]string{"id": c.Param("id")})
		})

		rec := doRequest(r, "GET", "/books/42")
		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), "42")
	})

	t.Run("literal beats parameter when registered first", func(t *testing.T) {
		r := New()
		r.GET("/books/all", func(c *Context) error {
			return c.JSON(200, map[string]string{"route": "all"})
		})
		r.GET("/books/:id", func(c *Context) error {
			return c.JSON(200, map[string]string{"route": "one"})
		})

		rec := doRequest(r, "GET", "/books/all")
		assert.Contains(t, rec.Body.String(), `"all"`)
	})

	t.Run("method mismatch is not found", func(t *testing.T) {
		r := New()
		r.GET("/books", func(c *Context) error { return c.JSON(200, nil) })

		rec := doRequest(r, "DELETE", "/books")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("catch all parameter", func(t *testing.T) {
		r := New()
		r.GET("/files/*filepath", func(c *Context) error {
			return c.JSON(200, map[string]string{"path": c.Param("filepath")})
		})

		rec := doRequest(r, "GET", "/files/a/b/c.txt")
		assert.Contains(t, rec.Body.String(), "a/b/c.txt")
	})

	t.Run("custom not found handler", func(t *testing.T) {
		r := New()
		r.NotFound(func(c *Context) error {
			return c.JSON(404, map[string]string{"error": "nope"})
		})

		rec := doRequest(r, "GET", "/missing")
		assert.Equal(t, 404, rec.Code)
		assert.Contains(t, rec.Body.String(), "nope")
	})
}

func TestGroups(t *testing.T) {
	t.Run("nested prefixes combine", func(t *testing.T) {
		r := New()
		api := r.Group("/api")
		books := api.Group("/books")
		books.GET("/:id", func(c *Context) error {
			return c.JSON(200, map[string]string{"id": c.Param("id")})
		})

		rec := doRequest(r, "GET", "/api/books/7")
		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), "7")
	})

	t.Run("group middleware only applies inside the group", func(t *testing.T) {
		r := New()
		api := r.Group("/api")

		secured := api.Group("/secured")
		secured.Use(func(next HandlerFunc) HandlerFunc {
			return func(c *Context) error {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "denied"})
			}
		})
		secured.GET("", func(c *Context) error { return c.JSON(200, nil) })
		api.GET("/open", func(c *Context) error { return c.JSON(200, nil) })

		assert.Equal(t, http.StatusUnauthorized, doRequest(r, "GET", "/api/secured").Code)
		assert.Equal(t, 200, doRequest(r, "GET", "/api/open").Code)
	})

	t.Run("middleware runs in registration order", func(t *testing.T) {
		r := New()
		var order []string
		group := r.Group("/g")
		group.Use(func(next HandlerFunc) HandlerFunc {
			return func(c *Context) error {
				order = append(order, "first")
				return next(c)
			}
		})
		group.Use(func(next HandlerFunc) HandlerFunc {
			return func(c *Context) error {
				order = append(order, "second")
				return next(c)
			}
		})
		group.GET("", func(c *Context) error {
			order = append(order, "handler")
			return c.JSON(200, nil)
		})

		doRequest(r, "GET", "/g")
		require.Equal(t, []string{"first", "second", "handler"}, order)
	})
}

func TestContextValues(t *testing.T) {
	r := New()
	r.Use(func(next HandlerFunc) HandlerFunc {
		return func(c *Context) error {
			c.Set("user_id", uint(9))
			c.Set("user_role", "Member")
			return next(c)
		}
	})
	r.GET("/me", func(c *Context) error {
		assert.Equal(t, uint(9), c.GetUint("user_id"))
		assert.Equal(t, "Member", c.GetString("user_role"))
		assert.Equal(t, uint(0), c.GetUint("missing"))
		return c.JSON(200, nil)
	})

	rec := doRequest(r, "GET", "/me")
	assert.Equal(t, 200, rec.Code)
}

func TestShouldBindJSONValidation(t *testing.T) {
	type payload struct {
		Email string `json:"email" binding:"required,email"`
	}

	r := New()
	r.POST("/register", func(c *Context) error {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			return c.JSON(400, map[string]string{"error": err.Error()})
		}
		return c.JSON(200, p)
	})

	t.Run("valid body accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/register", bodyOf(`{"email":"a@b.co"}`))
		r.ServeHTTP(rec, req)
		assert.Equal(t, 200, rec.Code)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/register", bodyOf(`{"email":"nope"}`))
		r.ServeHTTP(rec, req)
		assert.Equal(t, 400, rec.Code)
	})
}
