// Package live runs search widgets on the server. The browser forwards raw
// input events over a websocket and paints the HTML the server sends back.
package live

// MessageType is the first byte of a binary frame.
type MessageType uint8

const (
	// Frame types
	FrameEvent   MessageType = 0x01
	FrameControl MessageType = 0x02
)

// EventType identifies a widget event.
type EventType uint8

const (
	EventInput    EventType = 0x01 // payload: input text
	EventKey      EventType = 0x02 // payload: KeyboardEvent.key
	EventFocus    EventType = 0x03 // no payload
	EventFocusOut EventType = 0x04 // payload: 1 byte, 1 if focus moved inside the widget
	EventClick    EventType = 0x05 // payload: uvarint entry index
)

func (t EventType) String() string {
	switch t {
	case EventInput:
		return "input"
	case EventKey:
		return "key"
	case EventFocus:
		return "focus"
	case EventFocusOut:
		return "focusout"
	case EventClick:
		return "click"
	default:
		return "unknown"
	}
}

// Event is a decoded client event.
type Event struct {
	Type EventType
	// Text carries the input text or the key name.
	Text string
	// Index is the clicked entry.
	Index int
	// Inside is set on focus-out when focus stayed in the widget.
	Inside bool
}

// NewSessionID is the session id a client sends to get a fresh one.
const NewSessionID = "new"

// Control messages
const (
	ControlHello = "HELLO"
	ControlPing  = "PING"
	ControlPong  = "PONG"
)

// Server to client text messages.
const (
	MessageRender = "render"
	MessageSelect = "select"
)

// RenderMessage carries the widget state after an event.
type RenderMessage struct {
	Type string `json:"type"`
	// HTML is the whole widget, Options only the dropdown entries.
	HTML        string `json:"html"`
	Options     string `json:"options"`
	Text        string `json:"text"`
	Placeholder string `json:"placeholder"`
	Open        bool   `json:"open"`
	Highlight   int    `json:"highlight"`
}

// SelectMessage reports a selection.
type SelectMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Animate bool   `json:"animate"`
}
