// Package sse implements push channels over Server-Sent Events.
package sse

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/drawit/internal/fanout"
	"github.com/mcoot/drawit/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256

	// Reconnect delay suggested to the browser
	retryMillis = "3000"
)

// ErrStreamingUnsupported is returned when the response cannot be flushed
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Stream is a fanout.Channel backed by an SSE response
type Stream struct {
	playerID  model.PlayerID
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

var _ fanout.Channel = (*Stream)(nil)

// NewStream creates a Stream for the player
func NewStream(playerID model.PlayerID) *Stream {
	return &Stream{
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Send queues a frame without blocking
func (s *Stream) Send(frame fanout.Frame) error {
	select {
	case <-s.done:
		return fanout.ErrStreamClosed
	default:
	}

	msg := formatSSEMessage(string(frame.Event), string(frame.Data))
	select {
	case s.send <- msg:
		return nil
	default:
		return fanout.ErrBufferFull
	}
}

// Close ends the stream; Serve returns after writing what is already queued
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Done is closed when the stream is closed
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Serve writes queued frames to w until the stream is closed, the client
// goes away, or a write fails. The caller must have checked Supported.
func Serve(w http.ResponseWriter, r *http.Request, s *Stream) error {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	if err := write(w, rc, []byte("retry: "+retryMillis+"\n\n")); err != nil {
		return err
	}

	for {
		select {
		case msg := <-s.send:
			if err := write(w, rc, msg); err != nil {
				return err
			}

		case <-s.done:
			return drain(w, rc, s)

		case <-r.Context().Done():
			return nil
		}
	}
}

// Supported reports whether w can stream
func Supported(w http.ResponseWriter) bool {
	for {
		switch t := w.(type) {
		case http.Flusher:
			return true
		case interface{ Unwrap() http.ResponseWriter }:
			w = t.Unwrap()
		default:
			return false
		}
	}
}

func drain(w http.ResponseWriter, rc *http.ResponseController, s *Stream) error {
	for {
		select {
		case msg := <-s.send:
			if err := write(w, rc, msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func write(w http.ResponseWriter, rc *http.ResponseController, msg []byte) error {
	// Not every writer supports deadlines (e.g. test recorders)
	_ = rc.SetWriteDeadline(time.Now().Add(writeWait))
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return rc.Flush()
}

// formatSSEMessage formats an SSE message with event name and data.
// Multi-line data gets a "data: " prefix on each line.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitLines splits on \n, \r\n and \r. Always returns at least one line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
