//go:build js && wasm

package treeview

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/recera/famtree/pkg/family"
)

// ErrNoLibrary is returned when the family-chart script is not loaded.
var ErrNoLibrary = errors.New("treeview: family-chart library (f3) not loaded")

// Chart drives a family-chart instance.
type Chart struct {
	chart js.Value
	click js.Func
}

// NewChart creates the chart inside the element matched by selector and
// draws it once.
func NewChart(selector string, people []family.Person, opts *Options) (*Chart, error) {
	o := opts.withDefaults()

	f3 := js.Global().Get("f3")
	if !f3.Truthy() {
		return nil, ErrNoLibrary
	}
	if el := js.Global().Get("document").Call("querySelector", selector); el.IsNull() {
		return nil, fmt.Errorf("treeview: mount %q not found", selector)
	}
	data, err := toJS(people)
	if err != nil {
		return nil, err
	}

	chart := f3.Call("createChart", selector, data).
		Call("setTransitionTime", o.TransitionTime.Milliseconds()).
		Call("setCardXSpacing", o.CardXSpacing).
		Call("setCardYSpacing", o.CardYSpacing)

	display := make([]any, len(o.CardDisplay))
	for i, line := range o.CardDisplay {
		fields := make([]any, len(line))
		for j, f := range line {
			fields[j] = f
		}
		display[i] = fields
	}
	card := chart.Call("setCard", f3.Get("CardHtml")).
		Call("setCardDisplay", js.ValueOf(display)).
		Call("setCardDim", js.ValueOf(map[string]any{"h": o.CardHeight}))

	c := &Chart{chart: chart}
	if o.OnCardClick != nil && card.Get("setOnCardClick").Truthy() {
		c.click = js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) > 1 {
				if d := args[1].Get("data"); d.Truthy() {
					o.OnCardClick(d.Get("id").String())
				}
			}
			return nil
		})
		card.Call("setOnCardClick", c.click)
	}

	c.Update(UpdateOptions{Initial: true})
	return c, nil
}

// SetMainPerson implements API.
func (c *Chart) SetMainPerson(id family.ID) {
	c.chart.Call("updateMainId", string(id))
}

// Update implements API.
func (c *Chart) Update(opts UpdateOptions) {
	c.chart.Call("updateTree", js.ValueOf(map[string]any{"initial": opts.Initial}))
}

// Release frees the click callback.
func (c *Chart) Release() {
	if c.click.Truthy() {
		c.click.Release()
	}
}

// toJS hands the records to JS in the family-chart format.
func toJS(people []family.Person) (js.Value, error) {
	b, err := json.Marshal(people)
	if err != nil {
		return js.Undefined(), fmt.Errorf("treeview: encode data: %w", err)
	}
	return js.Global().Get("JSON").Call("parse", string(b)), nil
}
