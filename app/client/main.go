//go:build js && wasm

// Command client is the browser side of famtree: it draws the family chart
// and wires the person search to it.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"syscall/js"

	"github.com/recera/famtree/pkg/debug"
	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/reactive"
	"github.com/recera/famtree/pkg/renderer/dom"
	"github.com/recera/famtree/pkg/search"
	"github.com/recera/famtree/pkg/treeview"
)

const mountSelector = "#FamilyChart"

var (
	document = js.Global().Get("document")
	window   = js.Global().Get("window")
)

func main() {
	debug.EnableLogging()
	debug.Log("[famtree] client starting")

	if err := run(); err != nil {
		debug.Error("[famtree]", err)
	}

	// Keep the WASM runtime alive
	select {}
}

func run() error {
	people, err := fetchPeople()
	if err != nil {
		return err
	}
	debug.Logf("[famtree] loaded %d people", len(people))

	focal := reactive.NewState(initialFocus(people))
	animate := true
	focus := func(id family.ID, a bool) {
		animate = a
		focal.Set(id)
	}

	chart, err := treeview.NewChart(mountSelector, people, &treeview.Options{
		OnCardClick: func(id string) { focus(family.ID(id), true) },
	})
	if err != nil {
		return err
	}
	center := treeview.Focus(chart)
	if id := focal.Get(); id != "" {
		center(id, false)
	}
	focal.Subscribe(func(id family.ID) {
		center(id, animate)
		setHash(id)
	})
	syncHash(focal)

	if document.Get("body").Get("dataset").Get("mode").String() == "live" {
		return startLive(focus)
	}

	ctl, err := search.New(dom.NewHost(), mountSelector, people, search.SelectFunc(focus))
	if err != nil {
		return err
	}
	debug.Log("[famtree] search ready with", len(ctl.Options()), "options")
	return nil
}

func fetchPeople() ([]family.Person, error) {
	url := window.Get("location").Get("origin").String() + "/api/people"
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch people: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch people: %s", resp.Status)
	}
	var people []family.Person
	if err := json.NewDecoder(resp.Body).Decode(&people); err != nil {
		return nil, fmt.Errorf("decode people: %w", err)
	}
	return people, nil
}

// initialFocus picks the hash id, then the server's ?main, then nobody.
func initialFocus(people []family.Person) family.ID {
	byID := family.Index(people)
	for _, id := range []family.ID{hashID(), family.ID(document.Call("querySelector", mountSelector).Get("dataset").Get("main").String())} {
		if _, ok := byID[id]; ok && id != "" {
			return id
		}
	}
	return ""
}

func hashID() family.ID {
	return family.ID(strings.TrimPrefix(window.Get("location").Get("hash").String(), "#"))
}

func setHash(id family.ID) {
	if hashID() != id {
		window.Get("history").Call("replaceState", nil, "", "#"+string(id))
	}
}

// syncHash follows manual edits of the URL hash.
func syncHash(focal *reactive.State[family.ID]) {
	window.Call("addEventListener", "hashchange", js.FuncOf(func(this js.Value, args []js.Value) any {
		if id := hashID(); id != "" && id != focal.Get() {
			focal.Set(id)
		}
		return nil
	}))
}
