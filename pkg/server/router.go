package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/recera/famtree/pkg/renderer/html"
	"github.com/recera/famtree/pkg/vdom"
)

// HandlerFunc is the signature for page handlers. A nil node with a nil
// error means the handler wrote the response itself.
type HandlerFunc func(ctx Ctx) (*vdom.VNode, error)

// APIHandlerFunc is the signature for JSON handlers
type APIHandlerFunc func(ctx Ctx) (any, error)

// Middleware wraps every handler of a route.
type Middleware interface {
	Before(ctx Ctx) error // return Stop() to abort chain
	After(ctx Ctx) error  // always called if Before succeeded
}

// RouteNode is a node of the segment tree. Segments are static ("api"),
// parameters (":id") or a trailing catch-all ("*path").
type RouteNode struct {
	segment    string
	param      bool
	catchAll   bool
	paramName  string
	handler    HandlerFunc
	apiHandler APIHandlerFunc
	children   []*RouteNode
	middleware []Middleware
}

// Router manages all routes and middleware
type Router struct {
	root       *RouteNode
	notFound   HandlerFunc
	errorPage  HandlerFunc
	middleware []Middleware
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewRouter creates a new router instance
func NewRouter() *Router {
	return &Router{
		root:   &RouteNode{},
		logger: slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger request contexts derive from.
func (r *Router) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l != nil {
		r.logger = l
	}
}

// AddRoute registers a page handler for a path
func (r *Router) AddRoute(path string, handler HandlerFunc, middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.insert(path)
	node.handler = handler
	node.middleware = middleware
}

// AddAPIRoute registers a JSON handler for a path
func (r *Router) AddAPIRoute(path string, handler APIHandlerFunc, middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.insert(path)
	node.apiHandler = handler
	node.middleware = middleware
}

// Use adds global middleware
func (r *Router) Use(middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// SetNotFound sets the 404 handler
func (r *Router) SetNotFound(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = handler
}

// SetErrorPage sets the 500 error handler
func (r *Router) SetErrorPage(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorPage = handler
}

// Match finds a handler for the given path
func (r *Router) Match(path string) (HandlerFunc, map[string]string, []Middleware) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	params := make(map[string]string)
	node, matched := r.matchNode(r.root, splitPath(path), params)
	if !matched || (node.handler == nil && node.apiHandler == nil) {
		return r.notFound, params, r.middleware
	}

	all := append([]Middleware{}, r.middleware...)
	all = append(all, node.middleware...)

	if node.apiHandler != nil {
		return wrapAPIHandler(node.apiHandler), params, all
	}
	return node.handler, params, all
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()

	ctx := newContext(w, req, logger)

	handler, params, middleware := r.Match(req.URL.Path)
	if handler == nil {
		ctx.Text(http.StatusNotFound, "Not Found")
		return
	}
	ctx.params = params

	defer func() {
		if err := recover(); err != nil {
			ctx.Logger().Error("panic in handler", "error", err)
			r.handleError(ctx, fmt.Errorf("internal server error: %v", err))
		}
	}()

	final := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := final
		final = func(c Ctx) (*vdom.VNode, error) {
			if err := mw.Before(c); err != nil {
				if errors.Is(err, ErrStop) {
					return nil, nil
				}
				return nil, err
			}
			result, err := next(c)
			if afterErr := mw.After(c); afterErr != nil {
				c.Logger().Error("error in After middleware", "error", afterErr)
			}
			return result, err
		}
	}

	vnode, err := final(ctx)
	if err != nil {
		r.handleError(ctx, err)
		return
	}
	if vnode == nil {
		return
	}
	if err := ctx.render(ctx.StatusCode(), vnode); err != nil {
		ctx.Logger().Error("render failed", "error", err)
	}
}

func (r *Router) insert(path string) *RouteNode {
	node := r.root
	for _, segment := range splitPath(path) {
		node = findOrCreateChild(node, segment)
	}
	return node
}

func findOrCreateChild(parent *RouteNode, segment string) *RouteNode {
	switch {
	case strings.HasPrefix(segment, "*"):
		name := segment[1:]
		for _, child := range parent.children {
			if child.catchAll && child.paramName == name {
				return child
			}
		}
		node := &RouteNode{segment: segment, catchAll: true, paramName: name}
		parent.children = append(parent.children, node)
		return node

	case strings.HasPrefix(segment, ":"):
		name := segment[1:]
		for _, child := range parent.children {
			if child.param && child.paramName == name {
				return child
			}
		}
		node := &RouteNode{segment: segment, param: true, paramName: name}
		parent.children = append(parent.children, node)
		return node
	}

	for _, child := range parent.children {
		if !child.param && !child.catchAll && child.segment == segment {
			return child
		}
	}
	node := &RouteNode{segment: segment}
	parent.children = append(parent.children, node)
	return node
}

// matchNode prefers static segments, then parameters, then a catch-all.
func (r *Router) matchNode(node *RouteNode, segments []string, params map[string]string) (*RouteNode, bool) {
	if len(segments) == 0 {
		return node, true
	}

	segment := segments[0]
	remaining := segments[1:]

	for _, child := range node.children {
		if !child.param && !child.catchAll && child.segment == segment {
			if result, ok := r.matchNode(child, remaining, params); ok {
				return result, true
			}
		}
	}

	for _, child := range node.children {
		if child.param && segment != "" {
			params[child.paramName] = segment
			if result, ok := r.matchNode(child, remaining, params); ok {
				return result, true
			}
			delete(params, child.paramName)
		}
	}

	for _, child := range node.children {
		if child.catchAll {
			params[child.paramName] = strings.Join(segments, "/")
			return child, true
		}
	}

	return nil, false
}

// handleError maps err to a status and writes the error response.
func (r *Router) handleError(ctx *ctxImpl, err error) {
	code := StatusOf(err)
	if code >= http.StatusInternalServerError {
		ctx.Logger().Error("handler error", "error", err)
	} else {
		ctx.Logger().Debug("request rejected", "status", code, "error", err)
	}

	if ctx.written() {
		return
	}

	r.mu.RLock()
	errorPage := r.errorPage
	r.mu.RUnlock()

	if code >= http.StatusInternalServerError && errorPage != nil {
		ctx.Status(code)
		if vnode, perr := errorPage(ctx); perr == nil && vnode != nil {
			if rerr := ctx.render(code, vnode); rerr == nil {
				return
			}
		}
	}

	if strings.HasPrefix(ctx.Path(), "/api/") {
		ctx.JSON(code, map[string]string{"error": http.StatusText(code)})
		return
	}
	ctx.Text(code, http.StatusText(code))
}

// Routes lists the registered route patterns in registration order.
func (r *Router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	var walk func(node *RouteNode, prefix string)
	walk = func(node *RouteNode, prefix string) {
		path := prefix
		if node.segment != "" {
			path = prefix + "/" + node.segment
		}
		if node.handler != nil || node.apiHandler != nil {
			if path == "" {
				out = append(out, "/")
			} else {
				out = append(out, path)
			}
		}
		for _, child := range node.children {
			walk(child, path)
		}
	}
	walk(r.root, "")
	return out
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}

func wrapAPIHandler(handler APIHandlerFunc) HandlerFunc {
	return func(ctx Ctx) (*vdom.VNode, error) {
		result, err := handler(ctx)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, nil
		}
		if err := ctx.JSON(ctx.StatusCode(), result); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// renderPage writes a full document when the root is <html>.
func renderPage(w http.ResponseWriter, code int, vnode *vdom.VNode) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if vnode.Kind == vdom.KindElement && vnode.Tag == "html" {
		if _, err := w.Write([]byte("<!DOCTYPE html>\n")); err != nil {
			return err
		}
	}
	return html.NewRenderer(w).Render(vnode)
}
