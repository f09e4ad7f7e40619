package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}

// ResponseWriter wraps http.ResponseWriter and records the written status code.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *ResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.status = http.StatusOK
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the status code written to the response, or 200 if none yet.
func (w *ResponseWriter) Status() int {
	if !w.written {
		return http.StatusOK
	}
	return w.status
}

// Context carries the request, response and per-request values through handlers.
type Context struct {
	Writer  *ResponseWriter
	Request *http.Request

	params map[string]string
	keys   map[string]any
}

// JSON writes v as a JSON response with the given status code.
func (c *Context) JSON(code int, v any) error {
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Writer.WriteHeader(code)
	return json.NewEncoder(c.Writer).Encode(v)
}

// Status writes a bare status code response.
func (c *Context) Status(code int) {
	c.Writer.WriteHeader(code)
}

// Redirect sends an HTTP redirect to location.
func (c *Context) Redirect(code int, location string) error {
	http.Redirect(c.Writer, c.Request, location, code)
	return nil
}

// Param returns the value of a path parameter (e.g. ":id").
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Query returns the first query string value for key.
func (c *Context) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// ShouldBindJSON decodes the request body into obj and validates it against
// its `binding` struct tags.
func (c *Context) ShouldBindJSON(obj any) error {
	if c.Request.Body == nil {
		return errors.New("request body is empty")
	}
	decoder := json.NewDecoder(c.Request.Body)
	if err := decoder.Decode(obj); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(obj); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil // obj is not a struct; nothing to validate
		}
		return err
	}
	return nil
}

// ShouldBind is an alias for ShouldBindJSON on JSON APIs.
func (c *Context) ShouldBind(obj any) error {
	return c.ShouldBindJSON(obj)
}

// FormFile returns the uploaded file for the given multipart form field.
func (c *Context) FormFile(name string) (*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}
	_, header, err := c.Request.FormFile(name)
	return header, err
}

// FormValue returns a multipart or urlencoded form value.
func (c *Context) FormValue(name string) string {
	return c.Request.FormValue(name)
}

// Set stores a per-request value (used by middleware to pass data to handlers).
func (c *Context) Set(key string, value any) {
	if c.keys == nil {
		c.keys = make(map[string]any)
	}
	c.keys[key] = value
}

// Get retrieves a per-request value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.keys[key]
	return v, ok
}

// GetString returns a per-request value as a string, or "".
func (c *Context) GetString(key string) string {
	if v, ok := c.keys[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUint returns a per-request value as a uint, or 0.
func (c *Context) GetUint(key string) uint {
	if v, ok := c.keys[key]; ok {
		switch n := v.(type) {
		case uint:
			return n
		case int:
			return uint(n)
		case int64:
			return uint(n)
		case float64:
			return uint(n)
		}
	}
	return 0
}

// Cookie returns the named cookie's value.
func (c *Context) Cookie(name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// SetCookie adds a Set-Cookie header to the response.
func (c *Context) SetCookie(name, value string, maxAge int, path string, secure, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     path,
		Secure:   secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClientIP returns the caller's IP, honoring common proxy headers.
func (c *Context) ClientIP() string {
	if xff := c.Request.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := c.Request.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// Header returns a request header value.
func (c *Context) Header(name string) string {
	return c.Request.Header.Get(name)
}
