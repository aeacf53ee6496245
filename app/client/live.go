//go:build js && wasm

package main

import (
	"strconv"
	"syscall/js"
	"time"

	"github.com/recera/famtree/pkg/debug"
	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/live"
	"github.com/recera/famtree/pkg/renderer/dom"
	"github.com/recera/famtree/pkg/search"
)

const pingEvery = 30 * time.Second

// startLive drives the server-rendered widget: DOM events go to the server
// session, renders and selections come back.
func startLive(onSelect search.SelectFunc) error {
	container := document.Call("getElementById", search.ContainerID)
	input := document.Call("getElementById", search.InputID)
	dropdown := document.Call("getElementById", search.DropdownID)
	if container.IsNull() || input.IsNull() || dropdown.IsNull() {
		return search.ErrMissingMount
	}

	loc := window.Get("location")
	scheme := "ws"
	if loc.Get("protocol").String() == "https:" {
		scheme = "wss"
	}
	client := live.NewClient(scheme + "://" + loc.Get("host").String() + "/live/" + live.NewSessionID)
	client.SetDebugLog(debug.Log)

	client.OnHello(func(id string) { debug.Log("[famtree] live session", id) })
	client.OnRender(func(m live.RenderMessage) {
		if input.Get("value").String() != m.Text {
			input.Set("value", m.Text)
		}
		input.Set("placeholder", m.Placeholder)
		dropdown.Set("innerHTML", m.Options)
		if m.Open {
			dropdown.Get("style").Set("display", "block")
		} else {
			dropdown.Get("style").Set("display", "none")
		}
	})
	client.OnSelect(func(m live.SelectMessage) { onSelect(family.ID(m.ID), m.Animate) })
	client.OnClose(func() { debug.Log("[famtree] live session closed") })

	events := dom.NewApplier()
	events.Listen(input, "input", func(text string) {
		client.SendEvent(live.Event{Type: live.EventInput, Text: text})
	})
	events.Listen(input, "focus", func() {
		client.SendEvent(live.Event{Type: live.EventFocus})
	})
	events.Listen(input, "keydown", func(ev js.Value) {
		key := ev.Get("key").String()
		switch key {
		case "ArrowDown", "ArrowUp", "Enter":
			ev.Call("preventDefault")
		case "Escape":
			input.Call("blur")
		}
		client.SendEvent(live.Event{Type: live.EventKey, Text: key})
	})
	events.Listen(container, "focusout", func(ev js.Value) {
		next := ev.Get("relatedTarget")
		inside := next.Truthy() && container.Call("contains", next).Bool()
		client.SendEvent(live.Event{Type: live.EventFocusOut, Inside: inside})
	})
	events.Listen(dropdown, "click", func(ev js.Value) {
		entry := ev.Get("target").Call("closest", "[data-index]")
		if !entry.Truthy() {
			return
		}
		i, err := strconv.Atoi(entry.Get("dataset").Get("index").String())
		if err != nil {
			return
		}
		client.SendEvent(live.Event{Type: live.EventClick, Index: i})
	})
	events.Listen(dropdown, "wheel", func(ev js.Value) { ev.Call("stopPropagation") })

	client.Connect()
	go keepAlive(client)
	return nil
}

func keepAlive(client *live.Client) {
	for range time.Tick(pingEvery) {
		client.SendControl(live.ControlPing)
	}
}
