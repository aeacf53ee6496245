package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/recera/famtree/pkg/vdom"
)

var (
	// ErrStop is a sentinel error used by middleware to stop the chain
	ErrStop = errors.New("famtree: stop middleware chain")

	// ErrNotFound makes the router answer 404.
	ErrNotFound = errors.New("famtree: not found")

	// ErrBadRequest makes the router answer 400.
	ErrBadRequest = errors.New("famtree: bad request")
)

// Stop returns the sentinel error to halt middleware chain execution
func Stop() error {
	return ErrStop
}

// StatusOf maps a handler error to an HTTP status.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Ctx is passed through routing, middleware and handlers.
type Ctx interface {
	// === Request ===
	Request() *http.Request // raw request pointer (read-only)
	Context() context.Context
	Path() string            // path without query string
	Method() string          // GET, POST, etc.
	Query() url.Values       // parsed query params
	Param(key string) string // route param, panics if missing

	// === Response ===
	Writer() http.ResponseWriter   // for handlers that take over the response
	Status(code int)               // set HTTP status (default 200)
	StatusCode() int               // current status
	Header() http.Header           // writeable headers
	SetHeader(key, val string)     // convenience
	Redirect(url string, code int) // sets 30x + Location header
	JSON(code int, v any) error    // serialise & write JSON
	Blob(code int, contentType string, b []byte) error
	Text(code int, msg string) error // write text/plain

	Logger() *slog.Logger
}

type ctxImpl struct {
	req           *http.Request
	w             http.ResponseWriter
	params        map[string]string
	statusCode    int
	logger        *slog.Logger
	headerWritten bool
	mu            sync.RWMutex
}

func newContext(w http.ResponseWriter, r *http.Request, logger *slog.Logger) *ctxImpl {
	return &ctxImpl{
		req:        r,
		w:          w,
		params:     make(map[string]string),
		statusCode: http.StatusOK,
		logger: logger.With(
			"path", r.URL.Path,
			"method", r.Method,
		),
	}
}

// === Request Methods ===

func (c *ctxImpl) Request() *http.Request { return c.req }

func (c *ctxImpl) Context() context.Context { return c.req.Context() }

func (c *ctxImpl) Path() string { return c.req.URL.Path }

func (c *ctxImpl) Method() string { return c.req.Method }

func (c *ctxImpl) Query() url.Values { return c.req.URL.Query() }

func (c *ctxImpl) Param(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, ok := c.params[key]
	if !ok {
		panic(fmt.Sprintf("famtree: route parameter %q not found", key))
	}
	return val
}

// === Response Methods ===

func (c *ctxImpl) Writer() http.ResponseWriter {
	c.markWritten(c.StatusCode())
	return c.w
}

func (c *ctxImpl) Status(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.headerWritten {
		c.logger.Warn("attempted to set status after headers written", "code", code)
		return
	}
	c.statusCode = code
}

func (c *ctxImpl) StatusCode() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusCode
}

func (c *ctxImpl) Header() http.Header { return c.w.Header() }

func (c *ctxImpl) SetHeader(key, val string) { c.w.Header().Set(key, val) }

func (c *ctxImpl) Redirect(url string, code int) {
	c.markWritten(code)
	http.Redirect(c.w, c.req, url, code)
}

func (c *ctxImpl) JSON(code int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return c.Blob(code, "application/json", append(b, '\n'))
}

func (c *ctxImpl) Blob(code int, contentType string, b []byte) error {
	c.markWritten(code)
	c.w.Header().Set("Content-Type", contentType)
	c.w.WriteHeader(code)
	_, err := c.w.Write(b)
	return err
}

func (c *ctxImpl) Text(code int, msg string) error {
	return c.Blob(code, "text/plain; charset=utf-8", []byte(msg))
}

func (c *ctxImpl) Logger() *slog.Logger { return c.logger }

func (c *ctxImpl) render(code int, vnode *vdom.VNode) error {
	c.markWritten(code)
	return renderPage(c.w, code, vnode)
}

func (c *ctxImpl) markWritten(code int) {
	c.mu.Lock()
	c.statusCode = code
	c.headerWritten = true
	c.mu.Unlock()
}

func (c *ctxImpl) written() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headerWritten
}
