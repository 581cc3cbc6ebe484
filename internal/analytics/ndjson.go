package analytics

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ridepy/ridepy/internal/model"
)

// NDJSONWriter encodes events as newline-delimited JSON, one object per
// line, matching spec.md §6's "event stream" external interface. It adds
// no buffering of its own; wrap w in a *bufio.Writer for high-volume
// simulations.
type NDJSONWriter struct {
	w   io.Writer
	enc *json.Encoder
}

// NewNDJSONWriter wraps w. Each call to Write appends exactly one line.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{w: w, enc: json.NewEncoder(w)}
}

// Write encodes a single event.
func (n *NDJSONWriter) Write(ev model.Event) error {
	if err := n.enc.Encode(ev); err != nil {
		return fmt.Errorf("analytics: encode event %s: %w", ev.Kind, err)
	}
	return nil
}

// WriteAll encodes a batch of events in the order given.
func (n *NDJSONWriter) WriteAll(events []model.Event) error {
	for _, ev := range events {
		if err := n.Write(ev); err != nil {
			return err
		}
	}
	return nil
}
