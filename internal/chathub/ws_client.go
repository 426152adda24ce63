package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 256
)

// WebSocketClient implements Client over a gorilla/websocket connection.
// A read pump and a write pump run as goroutines for the lifetime of the
// connection; the write pump owns all data writes.
type WebSocketClient struct {
	userID uint
	conn   *websocket.Conn
	send   chan any

	onFrame func([]byte)
	onClose func()

	mu     sync.Mutex
	closed bool
}

func NewWebSocketClient(userID uint, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		userID: userID,
		conn:   conn,
		send:   make(chan any, sendQueueSize),
	}
}

// OnFrame sets the inbound frame handler. Must be called before Run.
func (c *WebSocketClient) OnFrame(fn func([]byte)) { c.onFrame = fn }

// OnClose sets the cleanup hook; it runs exactly once when the read pump
// exits, on every exit path including abrupt disconnects.
func (c *WebSocketClient) OnClose(fn func()) { c.onClose = fn }

func (c *WebSocketClient) UserID() uint { return c.userID }

// Send queues an event without blocking. False means the queue is full or
// the client already closed; callers treat that as a dead connection.
func (c *WebSocketClient) Send(event any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// Close shuts the send queue down, which makes the write pump emit a normal
// close frame and exit. Safe to call more than once and concurrently with
// Send.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run starts both pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *WebSocketClient) readPump() {
	defer func() {
		if c.onClose != nil {
			c.onClose()
		}
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message from user %d: %v", c.userID, err)
			}
			break
		}
		if c.onFrame != nil {
			c.onFrame(message)
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Error encoding event for user %d: %v", c.userID, err)
				continue
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Drain whatever else is already queued into the same frame batch.
			n := len(c.send)
			for i := 0; i < n; i++ {
				next, ok := <-c.send
				if !ok {
					break
				}
				if extra, err := json.Marshal(next); err == nil {
					w.Write([]byte{'\n'})
					w.Write(extra)
				}
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
