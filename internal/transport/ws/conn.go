// Package ws implements push channels over WebSocket. Each frame is sent as
// a JSON text message {"event": ..., "data": ...}. Inbound messages are
// read only to service control frames and detect closure.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/drawit/internal/fanout"
	"github.com/mcoot/drawit/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 512

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope is the JSON shape of each pushed message
type Envelope struct {
	Event model.EventKind `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Conn is a fanout.Channel backed by a WebSocket connection
type Conn struct {
	playerID  model.PlayerID
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

var _ fanout.Channel = (*Conn)(nil)

// Upgrade switches the request to the WebSocket protocol. On failure the
// upgrader has already written an HTTP error response.
func Upgrade(w http.ResponseWriter, r *http.Request, playerID model.PlayerID) (*Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Send queues a frame without blocking
func (c *Conn) Send(frame fanout.Frame) error {
	select {
	case <-c.done:
		return fanout.ErrStreamClosed
	default:
	}

	msg, err := json.Marshal(Envelope{Event: frame.Event, Data: frame.Data})
	if err != nil {
		return err
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return fanout.ErrBufferFull
	}
}

// Close asks the connection to flush queued frames and shut down
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Reject closes a freshly upgraded connection with a policy violation
func (c *Conn) Reject(reason string) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
	_ = c.conn.Close()
}

// Run pumps messages until either side closes the connection
func (c *Conn) Run() {
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		c.writePump()
	}()

	c.readPump()
	c.Close()
	<-writeDone
}

// readPump discards inbound data; it returns when the peer goes away
func (c *Conn) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-c.done:
			if err := c.drain(); err != nil {
				return
			}
			_ = c.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain writes whatever is still queued
func (c *Conn) drain() error {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Conn) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
