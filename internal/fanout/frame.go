// Package fanout delivers events to the players' push channels.
//
// A Registry maps each player to at most one open Channel and keeps it alive
// with periodic pings. A Bus encodes an event once and writes it to every
// attached channel selected by a Predicate. A failed write detaches that
// channel and is reported to the owner, which treats it as the player leaving.
package fanout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/drawit/internal/model"
)

var (
	// ErrStreamClosed is returned when sending to a closed channel
	ErrStreamClosed = errors.New("stream closed")
	// ErrBufferFull is returned when a channel cannot accept more frames
	ErrBufferFull = errors.New("stream buffer full")
)

// Frame is an encoded event ready to be written to a transport
type Frame struct {
	Event model.EventKind
	Data  json.RawMessage
}

// Encode serializes an event payload as JSON
func Encode(evt model.Event) (Frame, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return Frame{}, fmt.Errorf("encode %s event: %w", evt.Kind(), err)
	}
	return Frame{Event: evt.Kind(), Data: data}, nil
}

// Channel is one player's push stream. Send must not block and must be safe
// to call concurrently with Close. Close must be idempotent.
type Channel interface {
	Send(frame Frame) error
	Close()
}
