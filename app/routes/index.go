// Package routes renders the famtree pages.
package routes

import (
	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/search"
	"github.com/recera/famtree/pkg/server"
	"github.com/recera/famtree/pkg/styling"
	"github.com/recera/famtree/pkg/treeview"
	"github.com/recera/famtree/pkg/vdom"
)

// Chart library module URLs.
const (
	D3URL          = "https://unpkg.com/d3?module"
	FamilyChartURL = "https://unpkg.com/family-chart@0.7.4?module"
)

var pageStyles = styling.StyleWithRegistry(`
.page {
	margin: 0;
	height: 100vh;
	background-color: rgb(33, 33, 33);
	color: #fff;
}
.chart {
	position: relative;
	width: 100%;
	height: 100%;
}
.focal {
	position: absolute;
	right: 10px;
	top: 10px;
	z-index: 999;
}
`)

// PageOptions configures the index page.
type PageOptions struct {
	Title string
	// Live makes the client drive the server-side widget over /live.
	Live         bool
	WasmPath     string // default /static/main.wasm
	WasmExecPath string // default /static/wasm_exec.js
	Placeholder  string
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Title == "" {
		o.Title = "Arbre généalogique"
	}
	if o.WasmPath == "" {
		o.WasmPath = "/static/main.wasm"
	}
	if o.WasmExecPath == "" {
		o.WasmExecPath = "/static/wasm_exec.js"
	}
	if o.Placeholder == "" {
		o.Placeholder = search.DefaultPlaceholder
	}
	return o
}

// Index serves the tree page. ?main=<id> pre-renders the focal card.
func Index(dir treeview.Directory, opts PageOptions) server.HandlerFunc {
	opts = opts.withDefaults()
	return func(ctx server.Ctx) (*vdom.VNode, error) {
		main := family.ID(ctx.Query().Get("main"))
		return IndexPage(dir, main, opts), nil
	}
}

// IndexPage builds the document. The search widget is rendered closed and
// empty; the client replaces it once the wasm module runs.
func IndexPage(dir treeview.Directory, main family.ID, opts PageOptions) *vdom.VNode {
	opts = opts.withDefaults()

	widget := search.View{Placeholder: opts.Placeholder, Highlight: search.NoHighlight}.Node(nil)
	chart := vdom.Div().
		ID("FamilyChart").
		Class("f3", pageStyles.Class("chart")).
		Data("main", string(main)).
		Children(widget)
	if main != "" {
		card := treeview.NewCard(dir, main)
		chart.Children(vdom.Div().Class(pageStyles.Class("focal")).Children(card.Node()).Build())
	}

	mode := "local"
	if opts.Live {
		mode = "live"
	}

	head := vdom.El("head").Children(
		vdom.El("meta").Attr("charset", "utf-8").Build(),
		vdom.El("meta").Attr("name", "viewport").Attr("content", "width=device-width, initial-scale=1").Build(),
		vdom.El("title").Text(opts.Title).Build(),
		vdom.El("style").Text(styling.GetAllCSS()).Build(),
		vdom.El("script").Attr("src", opts.WasmExecPath).Build(),
	).Build()

	body := vdom.El("body").
		Class(pageStyles.Class("page")).
		Data("mode", mode).
		Children(
			chart.Build(),
			vdom.El("script").Attr("type", "module").Text(bootScript(opts.WasmPath)).Build(),
		).Build()

	return vdom.El("html").Attr("lang", "fr").Children(head, body).Build()
}

// bootScript exposes the chart libraries as globals, then starts the client.
func bootScript(wasmPath string) string {
	return `import * as d3 from '` + D3URL + `';
import f3 from '` + FamilyChartURL + `';
window.d3 = d3;
window.f3 = f3;
const go = new Go();
WebAssembly.instantiateStreaming(fetch('` + wasmPath + `'), go.importObject)
	.then((result) => go.run(result.instance))
	.catch((err) => console.error('famtree: wasm failed to start', err));
`
}
