package testutil

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/drawit/internal/fanout"
	"github.com/mcoot/drawit/internal/model"
)

// RecordingChannel is a fanout.Channel that keeps every frame sent to it
type RecordingChannel struct {
	mu         sync.Mutex
	frames     []fanout.Frame
	closeCount int
	failWith   error
}

var _ fanout.Channel = (*RecordingChannel)(nil)

// NewRecordingChannel creates an empty RecordingChannel
func NewRecordingChannel() *RecordingChannel {
	return &RecordingChannel{}
}

// Send records the frame, or fails if the channel is closed or set to fail
func (c *RecordingChannel) Send(frame fanout.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeCount > 0 {
		return fanout.ErrStreamClosed
	}
	if c.failWith != nil {
		return c.failWith
	}
	c.frames = append(c.frames, frame)
	return nil
}

// Close marks the channel closed
func (c *RecordingChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
}

// FailWith makes every later Send return err
func (c *RecordingChannel) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

// Closed reports whether Close was called
func (c *RecordingChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount > 0
}

// CloseCount returns how many times Close was called
func (c *RecordingChannel) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}

// Frames returns a copy of the recorded frames
func (c *RecordingChannel) Frames() []fanout.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]fanout.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// Events returns the kinds of the recorded frames in order, ignoring pings
func (c *RecordingChannel) Events() []model.EventKind {
	var kinds []model.EventKind
	for _, f := range c.Frames() {
		if f.Event != model.EventPing {
			kinds = append(kinds, f.Event)
		}
	}
	return kinds
}

// Count returns how many frames of the given kind were recorded
func (c *RecordingChannel) Count(kind model.EventKind) int {
	n := 0
	for _, f := range c.Frames() {
		if f.Event == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent frame of the given kind
func (c *RecordingChannel) Last(kind model.EventKind) (fanout.Frame, bool) {
	frames := c.Frames()
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Event == kind {
			return frames[i], true
		}
	}
	return fanout.Frame{}, false
}

// Reset drops recorded frames
func (c *RecordingChannel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// Decode unmarshals a frame's payload into T, failing the test on error
func Decode[T any](t testing.TB, frame fanout.Frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(frame.Data, &v))
	return v
}

// LastPayload decodes the most recent frame of the given kind, failing the
// test if there is none
func LastPayload[T any](t testing.TB, ch *RecordingChannel, kind model.EventKind) T {
	t.Helper()
	frame, ok := ch.Last(kind)
	require.True(t, ok, "no %s frame recorded", kind)
	return Decode[T](t, frame)
}
