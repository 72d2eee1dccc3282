// Package sse decodes Server-Sent Event streams as emitted by
// OpenAI-compatible completion endpoints: "data: <json>" lines separated
// by blank lines, terminated by a literal "data: [DONE]".
package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const donePayload = "[DONE]"

// maxLineSize bounds a single event line; completion deltas are small but
// a server could batch a large chunk into one event.
const maxLineSize = 1 << 20

// Decoder incrementally parses an SSE stream into decoded JSON events.
// Events are yielded as each line completes, without buffering the body.
// The sequence is finite and non-restartable; it ends at "[DONE]" or at
// stream close, whichever comes first.
//
//	dec := sse.NewDecoder(resp.Body)
//	for dec.Next() {
//		use(dec.Event())
//	}
//	if err := dec.Err(); err != nil { ... }
type Decoder struct {
	scanner *bufio.Scanner
	event   json.RawMessage
	err     error
	done    bool
}

// NewDecoder creates a decoder reading from r. The caller retains
// ownership of r and closes it to abandon the stream early.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next advances to the next decoded event. It returns false when the
// stream ends, the terminator is seen, or reading fails. Lines that are
// not JSON-decodable are skipped, never failing the stream.
func (d *Decoder) Next() bool {
	if d.done {
		return false
	}

	for d.scanner.Scan() {
		line := strings.TrimRight(d.scanner.Text(), "\r")
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		payload := strings.TrimPrefix(line, "data: ")
		if payload == donePayload {
			d.done = true
			return false
		}

		if !json.Valid([]byte(payload)) {
			continue
		}

		d.event = json.RawMessage(payload)
		return true
	}

	d.done = true
	d.err = d.scanner.Err()
	return false
}

// Event returns the event decoded by the last successful Next
func (d *Decoder) Event() json.RawMessage {
	return d.event
}

// Err returns the first read error encountered. A stream that ends
// without the "[DONE]" terminator is not an error.
func (d *Decoder) Err() error {
	return d.err
}
