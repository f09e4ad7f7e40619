package router

import (
	"net/http"
	"strings"
)

// HandlerFunc is the signature of all route handlers.
type HandlerFunc func(c *Context) error

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(next HandlerFunc) HandlerFunc

type route struct {
	method   string
	segments []string // pattern split on "/"; ":name" params, "*name" catch-all
	handler  HandlerFunc
}

// Router dispatches requests to registered handlers. Patterns support
// ":param" segments and a trailing "*catchall" segment.
type Router struct {
	routes     []route
	middleware []Middleware
	notFound   HandlerFunc
	statics    map[string]string // url prefix -> directory
}

// New creates an empty router.
func New() *Router {
	return &Router{
		statics: make(map[string]string),
	}
}

// Use appends global middleware. Middleware runs in registration order.
func (r *Router) Use(mw Middleware) {
	r.middleware = append(r.middleware, mw)
}

// Handle registers a handler for method and pattern.
func (r *Router) Handle(method, pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(pattern),
		handler:  handler,
	})
}

func (r *Router) GET(pattern string, h HandlerFunc)    { r.Handle(http.MethodGet, pattern, h) }
func (r *Router) POST(pattern string, h HandlerFunc)   { r.Handle(http.MethodPost, pattern, h) }
func (r *Router) PUT(pattern string, h HandlerFunc)    { r.Handle(http.MethodPut, pattern, h) }
func (r *Router) PATCH(pattern string, h HandlerFunc)  { r.Handle(http.MethodPatch, pattern, h) }
func (r *Router) DELETE(pattern string, h HandlerFunc) { r.Handle(http.MethodDelete, pattern, h) }

// Group returns a RouterGroup rooted at prefix.
func (r *Router) Group(prefix string) *RouterGroup {
	return &RouterGroup{router: r, prefix: strings.TrimRight(prefix, "/")}
}

// Static serves files from dir under the given URL prefix.
func (r *Router) Static(prefix, dir string) {
	r.statics[strings.TrimRight(prefix, "/")] = dir
}

// NotFound sets the handler invoked when no route matches.
func (r *Router) NotFound(h HandlerFunc) {
	r.notFound = h
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := &Context{
		Writer:  &ResponseWriter{ResponseWriter: w},
		Request: req,
	}

	// Static file prefixes first
	for prefix, dir := range r.statics {
		if strings.HasPrefix(req.URL.Path, prefix+"/") || req.URL.Path == prefix {
			fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
			fs.ServeHTTP(w, req)
			return
		}
	}

	handler, params := r.match(req.Method, req.URL.Path)
	if handler == nil {
		handler = r.notFound
		if handler == nil {
			handler = func(c *Context) error {
				return c.JSON(http.StatusNotFound, map[string]any{"error": "Not found"})
			}
		}
	}
	ctx.params = params

	// Apply global middleware outermost-first.
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}

	if err := handler(ctx); err != nil && !ctx.Writer.written {
		_ = ctx.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

// Run starts the HTTP server on the given port (":8100" form).
func (r *Router) Run(port string) error {
	return http.ListenAndServe(port, r)
}

func (r *Router) match(method, path string) (HandlerFunc, map[string]string) {
	segments := splitPath(path)
	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		if params, ok := matchSegments(rt.segments, segments); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	var params map[string]string
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "*") {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:]] = strings.Join(path[i:], "/")
			return params, true
		}
		if i >= len(path) {
			return nil, false
		}
		if strings.HasPrefix(seg, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	if len(pattern) != len(path) {
		return nil, false
	}
	return params, true
}

// RouterGroup registers routes under a shared prefix with its own middleware
// chain.
type RouterGroup struct {
	router     *Router
	prefix     string
	middleware []Middleware
}

// Group returns a child group with the combined prefix and inherited middleware.
func (g *RouterGroup) Group(prefix string) *RouterGroup {
	child := &RouterGroup{
		router: g.router,
		prefix: g.prefix + "/" + strings.Trim(prefix, "/"),
	}
	child.middleware = append(child.middleware, g.middleware...)
	return child
}

// Use appends middleware applied to all routes registered through this group.
func (g *RouterGroup) Use(mw Middleware) {
	g.middleware = append(g.middleware, mw)
}

func (g *RouterGroup) handle(method, pattern string, h HandlerFunc) {
	// Group middleware wraps innermost-first so it runs in registration order.
	for i := len(g.middleware) - 1; i >= 0; i-- {
		h = g.middleware[i](h)
	}
	full := g.prefix
	if pattern != "" && pattern != "/" {
		full += "/" + strings.Trim(pattern, "/")
	}
	g.router.Handle(method, full, h)
}

func (g *RouterGroup) GET(pattern string, h HandlerFunc)    { g.handle(http.MethodGet, pattern, h) }
func (g *RouterGroup) POST(pattern string, h HandlerFunc)   { g.handle(http.MethodPost, pattern, h) }
func (g *RouterGroup) PUT(pattern string, h HandlerFunc)    { g.handle(http.MethodPut, pattern, h) }
func (g *RouterGroup) PATCH(pattern string, h HandlerFunc)  { g.handle(http.MethodPatch, pattern, h) }
func (g *RouterGroup) DELETE(pattern string, h HandlerFunc) { g.handle(http.MethodDelete, pattern, h) }
