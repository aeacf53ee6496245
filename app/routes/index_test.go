package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/renderer/html"
	"github.com/recera/famtree/pkg/search"
	"github.com/recera/famtree/pkg/server"
)

func testStore() *family.Store {
	jean := family.Person{ID: "1", Data: family.Data{FirstName: "Jean", LastName: "Marot"}}
	jean.Rels.Children = []family.ID{"2"}
	ana := family.Person{ID: "2", Data: family.Data{FirstName: "Ana", LastName: "Marot"}}
	ana.Rels.Father = "1"
	return family.NewStore([]family.Person{jean, ana})
}

func render(t *testing.T, main family.ID, opts PageOptions) string {
	t.Helper()
	out, err := html.RenderToString(IndexPage(testStore(), main, opts))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func TestIndexPage(t *testing.T) {
	out := render(t, "", PageOptions{})

	for _, want := range []string{
		`id="FamilyChart"`,
		`id="` + search.InputID + `"`,
		`placeholder="` + search.DefaultPlaceholder + `"`,
		`data-mode="local"`,
		`<script src="/static/wasm_exec.js"></script>`,
		`fetch('/static/main.wasm')`,
		FamilyChartURL,
		search.Styles.Class("search-input"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page is missing %q", want)
		}
	}
	if strings.Contains(out, `id="focal-card"`) {
		t.Error("focal card rendered without ?main")
	}
	// the dropdown starts hidden
	if !strings.Contains(out, `style="display: none"`) {
		t.Error("dropdown is not hidden")
	}
}

func TestIndexPage_FocalCard(t *testing.T) {
	out := render(t, "2", PageOptions{Live: true, Title: "Marot"})

	for _, want := range []string{
		`<title>Marot</title>`,
		`data-mode="live"`,
		`data-main="2"`,
		`id="focal-card"`,
		"Ana Marot",
		"Parents: Jean Marot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page is missing %q", want)
		}
	}

	out = render(t, "42", PageOptions{})
	if !strings.Contains(out, "Unknown person &#34;42&#34;") {
		t.Errorf("unknown focal person not reported:\n%s", out)
	}
}

func TestIndexHandler(t *testing.T) {
	router := server.NewRouter()
	router.AddRoute("/", Index(testStore(), PageOptions{}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/?main=1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "<!DOCTYPE html>\n<html") {
		t.Errorf("body does not start with a doctype: %.40q", body)
	}
	if !strings.Contains(body, "Children: Ana Marot") {
		t.Error("focal card for ?main=1 missing")
	}
}
