package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllVariants(t *testing.T) {
	messages := []Message{
		&SearchQuery{Text: "calc", MaxResults: 10},
		&SearchResponse{
			Results: []SearchResult{
				{
					Title:       "Calculator",
					Description: "Open calculator",
					Action:      Action{Type: ActionExecuteCommand, Value: "gnome-calculator"},
					Score:       1.0,
				},
			},
			Query: SearchQuery{Text: "calc", MaxResults: 10},
		},
		&Command{
			Name:        "Browser",
			Description: "Open the default browser",
			Action:      Action{Type: ActionOpenURL, Value: "https://example.com"},
			Keywords:    []string{"web", "firefox"},
		},
		&ConfigUpdate{},
		&Redirect{URL: "https://en.wikipedia.org/wiki/Rust programming"},
		&Error{Text: "something broke"},
	}

	for _, m := range messages {
		t.Run(string(m.Kind()), func(t *testing.T) {
			data, err := Marshal(m)
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)

			if diff := cmp.Diff(m, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"bogus","payload":{}}`))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not json at all"))
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Unmarshal([]byte(`{"type":"redirect","payload":[1,2,3]}`))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestFramingSeparatesBackToBackMessages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Send(&buf, &Redirect{URL: "https://a.example"}))
	require.NoError(t, Send(&buf, &Error{Text: "second"}))

	first, err := Receive(&buf)
	require.NoError(t, err)
	require.Equal(t, &Redirect{URL: "https://a.example"}, first)

	second, err := Receive(&buf)
	require.NoError(t, err)
	require.Equal(t, &Error{Text: "second"}, second)

	_, err = Receive(&buf)
	require.ErrorIs(t, err, io.EOF)
}

// countingWriter records whether any bytes were written at all.
type countingWriter struct {
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

func TestWriteFrameRejectsOversizedBeforeWriting(t *testing.T) {
	w := &countingWriter{}
	err := WriteFrame(w, make([]byte, MaxFrameSize+1))
	require.ErrorIs(t, err, ErrTooLarge)
	require.Zero(t, w.n, "oversized frame must not touch the wire")
}

func TestSendRejectsOversizedMessage(t *testing.T) {
	w := &countingWriter{}
	err := Send(w, &Error{Text: strings.Repeat("x", MaxFrameSize)})
	require.ErrorIs(t, err, ErrTooLarge)
	require.Zero(t, w.n)
}

func TestReadFrameRejectsOversizedDeclaredLength(t *testing.T) {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], MaxFrameSize+1)

	_, err := ReadFrame(bytes.NewReader(header[:]))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], 100)
	buf.Write(header[:])
	buf.WriteString("short")

	_, err := ReadFrame(&buf)
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestWriteFrameAtExactLimit(t *testing.T) {
	var buf bytes.Buffer
	payload := make([]byte, MaxFrameSize)
	require.NoError(t, WriteFrame(&buf, payload))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Len(t, got, MaxFrameSize)
}
