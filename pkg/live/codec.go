package live

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frame errors
var (
	ErrShortFrame   = errors.New("live: frame too short")
	ErrNotEvent     = errors.New("live: not an event frame")
	ErrUnknownEvent = errors.New("live: unknown event type")
)

// maxPayload bounds a single event payload.
const maxPayload = 64 << 10

// Encoder handles encoding of live protocol messages
type Encoder struct {
	w io.Writer
}

// NewEncoder creates a new encoder
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteUvarint writes an unsigned varint
func (e *Encoder) WriteUvarint(v uint64) error {
	_, err := e.w.Write(appendUvarint(nil, v))
	return err
}

// WriteString writes a length-prefixed string
func (e *Encoder) WriteString(s string) error {
	if err := e.WriteUvarint(uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

// WriteBytes writes raw bytes
func (e *Encoder) WriteBytes(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

// Decoder handles decoding of live protocol messages
type Decoder struct {
	r io.Reader
}

// NewDecoder creates a new decoder
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// ReadUvarint reads an unsigned varint
func (d *Decoder) ReadUvarint() (uint64, error) {
	return binary.ReadUvarint(d)
}

// ReadByte implements io.ByteReader
func (d *Decoder) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadString reads a length-prefixed string
func (d *Decoder) ReadString() (string, error) {
	b, err := d.readPrefixed()
	return string(b), err
}

func (d *Decoder) readPrefixed() ([]byte, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if length > maxPayload {
		return nil, fmt.Errorf("live: payload of %d bytes exceeds limit", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeEvent encodes an event as
// [FrameEvent][type][uvarint len][payload].
func EncodeEvent(evt Event) []byte {
	var payload []byte
	switch evt.Type {
	case EventInput, EventKey:
		payload = []byte(evt.Text)
	case EventFocusOut:
		if evt.Inside {
			payload = []byte{1}
		} else {
			payload = []byte{0}
		}
	case EventClick:
		idx := evt.Index
		if idx < 0 {
			idx = 0
		}
		payload = appendUvarint(nil, uint64(idx))
	}

	buf := make([]byte, 0, 3+len(payload))
	buf = append(buf, byte(FrameEvent), byte(evt.Type))
	buf = appendUvarint(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// DecodeEvent decodes a frame written by EncodeEvent.
func DecodeEvent(data []byte) (*Event, error) {
	if len(data) < 3 {
		return nil, ErrShortFrame
	}
	if data[0] != byte(FrameEvent) {
		return nil, ErrNotEvent
	}

	evt := &Event{Type: EventType(data[1])}
	payload, err := NewDecoder(bytes.NewReader(data[2:])).readPrefixed()
	if err != nil {
		return nil, fmt.Errorf("live: decode %s payload: %w", evt.Type, err)
	}

	switch evt.Type {
	case EventInput, EventKey:
		evt.Text = string(payload)
	case EventFocus:
	case EventFocusOut:
		evt.Inside = len(payload) > 0 && payload[0] == 1
	case EventClick:
		idx, n := binary.Uvarint(payload)
		if n <= 0 || idx > maxPayload {
			return nil, errors.New("live: bad click index")
		}
		evt.Index = int(idx)
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownEvent, data[1])
	}
	return evt, nil
}

// EncodeControl encodes [FrameControl][string name][string args...].
func EncodeControl(name string, args ...string) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteBytes([]byte{byte(FrameControl)})
	enc.WriteString(name)
	for _, a := range args {
		enc.WriteString(a)
	}
	return buf.Bytes()
}

// DecodeControl returns the name and string arguments of a control frame.
func DecodeControl(data []byte) (string, []string, error) {
	if len(data) < 2 || data[0] != byte(FrameControl) {
		return "", nil, errors.New("live: not a control frame")
	}
	r := bytes.NewReader(data[1:])
	dec := NewDecoder(r)
	name, err := dec.ReadString()
	if err != nil {
		return "", nil, fmt.Errorf("live: decode control: %w", err)
	}
	var args []string
	for r.Len() > 0 {
		a, err := dec.ReadString()
		if err != nil {
			return "", nil, fmt.Errorf("live: decode %s args: %w", name, err)
		}
		args = append(args, a)
	}
	return name, args, nil
}

// Helper function to append uvarint to byte slice
func appendUvarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}
