//go:build js && wasm

package live

import (
	"encoding/json"
	"syscall/js"
)

// Client handles WebSocket communication from the browser
type Client struct {
	ws    js.Value
	url   string
	funcs []js.Func

	onRender func(RenderMessage)
	onSelect func(SelectMessage)
	onHello  func(sessionID string)
	onClose  func()
	debugLog func(args ...interface{})
}

// NewClient creates a client for the websocket at url.
func NewClient(url string) *Client {
	return &Client{url: url}
}

// Connect opens the websocket.
func (c *Client) Connect() {
	c.ws = js.Global().Get("WebSocket").New(c.url)
	c.ws.Set("binaryType", "arraybuffer")

	c.ws.Set("onmessage", c.fn(func(args []js.Value) {
		data := args[0].Get("data")
		if data.Type() == js.TypeString {
			c.handleText(data.String())
			return
		}
		buffer := js.Global().Get("Uint8Array").New(data)
		frame := make([]byte, buffer.Get("length").Int())
		js.CopyBytesToGo(frame, buffer)
		c.handleBinary(frame)
	}))
	c.ws.Set("onclose", c.fn(func([]js.Value) {
		c.log("[Live Client] Disconnected")
		if c.onClose != nil {
			c.onClose()
		}
	}))
}

func (c *Client) fn(h func(args []js.Value)) js.Func {
	f := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		h(args)
		return nil
	})
	c.funcs = append(c.funcs, f)
	return f
}

func (c *Client) handleText(s string) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(s), &head); err != nil {
		c.log("[Live Client] bad message:", err.Error())
		return
	}
	switch head.Type {
	case MessageRender:
		var m RenderMessage
		if json.Unmarshal([]byte(s), &m) == nil && c.onRender != nil {
			c.onRender(m)
		}
	case MessageSelect:
		var m SelectMessage
		if json.Unmarshal([]byte(s), &m) == nil && c.onSelect != nil {
			c.onSelect(m)
		}
	}
}

func (c *Client) handleBinary(frame []byte) {
	name, args, err := DecodeControl(frame)
	if err != nil {
		c.log("[Live Client] bad frame:", err.Error())
		return
	}
	if name == ControlHello && len(args) > 0 && c.onHello != nil {
		c.onHello(args[0])
	}
}

// SendEvent sends an event to the server
func (c *Client) SendEvent(evt Event) {
	c.send(EncodeEvent(evt))
}

// SendControl sends a control frame such as PING.
func (c *Client) SendControl(name string, args ...string) {
	c.send(EncodeControl(name, args...))
}

func (c *Client) send(data []byte) {
	if c.ws.IsUndefined() || c.ws.IsNull() || c.ws.Get("readyState").Int() != 1 {
		return
	}
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	c.ws.Call("send", arr)
}

// Close closes the connection and releases the callbacks.
func (c *Client) Close() {
	if !c.ws.IsUndefined() && !c.ws.IsNull() {
		c.ws.Call("close")
	}
	for _, f := range c.funcs {
		f.Release()
	}
	c.funcs = nil
}

// OnRender sets the render handler
func (c *Client) OnRender(h func(RenderMessage)) { c.onRender = h }

// OnSelect sets the selection handler
func (c *Client) OnSelect(h func(SelectMessage)) { c.onSelect = h }

// OnHello receives the session id the server assigned.
func (c *Client) OnHello(h func(sessionID string)) { c.onHello = h }

// OnClose sets the disconnect handler
func (c *Client) OnClose(h func()) { c.onClose = h }

// SetDebugLog sets the debug logging function
func (c *Client) SetDebugLog(fn func(args ...interface{})) { c.debugLog = fn }

func (c *Client) log(args ...interface{}) {
	if c.debugLog != nil {
		c.debugLog(args...)
	}
}
