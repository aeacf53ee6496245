package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/recera/famtree/pkg/vdom"
)

func textPage(s string) HandlerFunc {
	return func(ctx Ctx) (*vdom.VNode, error) {
		return vdom.NewElement("div", nil, vdom.NewText(s)), nil
	}
}

func TestRouter_Match(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/", textPage("home"))
	router.AddRoute("/api/people", textPage("people"))
	router.AddRoute("/api/people/:id", textPage("person"))
	router.AddRoute("/api/people/:id/children", textPage("children"))
	router.AddRoute("/static/*path", textPage("static"))

	tests := []struct {
		path       string
		wantMatch  bool
		wantParams map[string]string
	}{
		{"/", true, map[string]string{}},
		{"/api/people", true, map[string]string{}},
		{"/api/people/", true, map[string]string{}},
		{"/api/people/42", true, map[string]string{"id": "42"}},
		{"/api/people/42/children", true, map[string]string{"id": "42"}},
		{"/static/app.wasm", true, map[string]string{"path": "app.wasm"}},
		{"/static/js/wasm_exec.js", true, map[string]string{"path": "js/wasm_exec.js"}},
		{"/api/people/42/spouses", false, nil},
		{"/notfound", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			handler, params, _ := router.Match(tt.path)
			if (handler != nil) != tt.wantMatch {
				t.Fatalf("Match(%q) matched = %v, want %v", tt.path, handler != nil, tt.wantMatch)
			}
			if tt.wantMatch && !reflect.DeepEqual(params, tt.wantParams) {
				t.Errorf("params = %v, want %v", params, tt.wantParams)
			}
		})
	}
}

func TestRouter_StaticBeatsParam(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/live/:session", textPage("param"))
	router.AddRoute("/live/new", textPage("static"))

	req := httptest.NewRequest("GET", "/live/new", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "static") {
		t.Errorf("body = %q, want the static route", w.Body.String())
	}
}

func TestRouter_ServeHTTP(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/page", func(ctx Ctx) (*vdom.VNode, error) {
		return vdom.NewElement("html", nil,
			vdom.NewElement("body", nil, vdom.NewText("hi "+ctx.Query().Get("name"))),
		), nil
	})

	req := httptest.NewRequest("GET", "/page?name=<Ana>", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := "<!DOCTYPE html>\n<html><body>hi &lt;Ana&gt;</body></html>"
	if w.Body.String() != want {
		t.Errorf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	router.SetNotFound(func(ctx Ctx) (*vdom.VNode, error) {
		ctx.Status(http.StatusNotFound)
		return vdom.NewElement("p", nil, vdom.NewText("no such page")), nil
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))
	if w.Code != http.StatusNotFound || w.Body.String() != "<p>no such page</p>" {
		t.Errorf("custom 404 = %d %q", w.Code, w.Body.String())
	}
}

func TestRouter_APIRoute(t *testing.T) {
	router := NewRouter()
	router.AddAPIRoute("/api/echo/:word", func(ctx Ctx) (any, error) {
		return map[string]string{"word": ctx.Param("word")}, nil
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/echo/bonjour", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"word":"bonjour"}` {
		t.Errorf("body = %s", got)
	}
}

func TestRouter_ErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("person %q: %w", "9", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("limit: %w", ErrBadRequest), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := NewRouter()
			router.AddAPIRoute("/api/fail", func(ctx Ctx) (any, error) { return nil, tt.err })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/api/fail", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if !strings.Contains(w.Body.String(), http.StatusText(tt.want)) {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}
}

func TestRouter_ErrorPage(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/boom", func(ctx Ctx) (*vdom.VNode, error) {
		panic("boom")
	})
	router.SetErrorPage(textPage("something broke"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if w.Body.String() != "<div>something broke</div>" {
		t.Errorf("body = %q", w.Body.String())
	}
}

type recordMiddleware struct {
	calls *[]string
	name  string
	stop  bool
}

func (m recordMiddleware) Before(ctx Ctx) error {
	*m.calls = append(*m.calls, m.name+".before")
	if m.stop {
		ctx.Text(http.StatusUnauthorized, "stopped")
		return Stop()
	}
	return nil
}

func (m recordMiddleware) After(ctx Ctx) error {
	*m.calls = append(*m.calls, m.name+".after")
	return nil
}

func TestRouter_Middleware(t *testing.T) {
	var calls []string
	router := NewRouter()
	router.Use(recordMiddleware{calls: &calls, name: "global"})
	router.AddRoute("/ok", func(ctx Ctx) (*vdom.VNode, error) {
		calls = append(calls, "handler")
		return vdom.NewText("ok"), nil
	}, recordMiddleware{calls: &calls, name: "route"})
	router.AddRoute("/stop", textPage("unreachable"), recordMiddleware{calls: &calls, name: "guard", stop: true})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ok", nil))
	want := []string{"global.before", "route.before", "handler", "route.after", "global.after"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}

	calls = nil
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/stop", nil))
	if w.Code != http.StatusUnauthorized || w.Body.String() != "stopped" {
		t.Errorf("stopped response = %d %q", w.Code, w.Body.String())
	}
	want = []string{"global.before", "guard.before", "global.after"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestRouter_Routes(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/", textPage("home"))
	router.AddAPIRoute("/api/people/:id", func(Ctx) (any, error) { return nil, nil })
	router.AddRoute("/static/*path", textPage("static"))

	want := []string{"/", "/api/people/:id", "/static/*path"}
	if got := router.Routes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Routes() = %v, want %v", got, want)
	}
}
