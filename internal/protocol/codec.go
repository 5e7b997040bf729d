package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest encoded payload a frame may carry. Send
// enforces it before writing anything; Receive enforces it on the
// declared length before reading the body.
const MaxFrameSize = 1 << 20 // 1 MiB

var (
	// ErrMalformed reports an envelope or payload that does not decode.
	ErrMalformed = errors.New("protocol: malformed message")
	// ErrTooLarge reports a payload exceeding MaxFrameSize.
	ErrTooLarge = errors.New("protocol: message too large")
)

// envelope is the on-wire shape of every message.
type envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshal encodes a message into its envelope form.
func Marshal(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", m.Kind(), err)
	}
	return json.Marshal(envelope{Type: m.Kind(), Payload: payload})
}

// Unmarshal decodes an envelope back into its concrete message type.
func Unmarshal(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var m Message
	switch env.Type {
	case KindSearchQuery:
		m = &SearchQuery{}
	case KindSearchResponse:
		m = &SearchResponse{}
	case KindCommand:
		m = &Command{}
	case KindConfigUpdate:
		m = &ConfigUpdate{}
	case KindRedirect:
		m = &Redirect{}
	case KindError:
		m = &Error{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, env.Type)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, m); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
		}
	}
	return m, nil
}

// ── Framing ─────────────────────────────────────────────────────────
//
// A stream read does not line up with message boundaries, so every
// message travels as [4-byte big-endian length][payload].

// WriteFrame writes one length-prefixed frame. Oversized payloads are
// rejected before a single byte hits the wire.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(payload), MaxFrameSize)
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads exactly one frame. A declared length over the maximum
// is rejected without attempting to read the body.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: declared length %d (max %d)", ErrTooLarge, n, MaxFrameSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// Send encodes and frames a message onto w.
func Send(w io.Writer, m Message) error {
	payload, err := Marshal(m)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}

// Receive reads one frame from r and decodes it.
func Receive(r io.Reader) (Message, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(payload)
}
