// Package responseformat writes command output as JSON or MessagePack
package responseformat

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Supported output formats
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
)

// Formatter handles encoding and writing results in JSON or MessagePack format
type Formatter struct {
	format string
}

// NewFormatter creates a new formatter. An empty format selects JSON.
func NewFormatter(format string) (*Formatter, error) {
	switch format {
	case "", FormatJSON:
		return &Formatter{format: FormatJSON}, nil
	case FormatMsgPack:
		return &Formatter{format: FormatMsgPack}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q, use %q or %q", format, FormatJSON, FormatMsgPack)
}

// Format returns the selected format name
func (f *Formatter) Format() string {
	return f.format
}

// Write encodes data to w in the selected format.
// JSON is written one document per line so results can be streamed.
func (f *Formatter) Write(w io.Writer, data any) error {
	if f.format == FormatMsgPack {
		return f.writeMsgPack(w, data)
	}
	return f.writeJSON(w, data)
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
