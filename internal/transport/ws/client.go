package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one subscriber. Writes are serialized because the underlying
// connection supports a single concurrent writer.
type Client struct {
	id           string
	conn         Conn
	writeTimeout time.Duration

	mu      sync.Mutex
	closed  bool
	held    bool
	pending []Message
}

func NewClient(id string, conn Conn, writeTimeout time.Duration) *Client {
	return &Client{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (c *Client) ID() string {
	return c.id
}

// Hold makes Send queue messages instead of writing them until Release.
func (c *Client) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.held = true
}

// Release writes first, then every message queued since Hold, and resumes
// direct writes.
func (c *Client) Release(first Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client %s: %w", c.id, ErrClientClosed)
	}

	pending := c.pending
	c.pending = nil
	c.held = false

	for _, msg := range append([]Message{first}, pending...) {
		if err := c.write(msg); err != nil {
			return err
		}
	}

	return nil
}

// Send writes msg as a single JSON frame.
func (c *Client) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client %s: %w", c.id, ErrClientClosed)
	}

	if c.held {
		c.pending = append(c.pending, msg)
		return nil
	}

	return c.write(msg)
}

func (c *Client) write(msg Message) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("client %s: failed to set write deadline: %w", c.id, err)
		}
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("client %s: failed to write %s message: %w", c.id, msg.Type, err)
	}

	return nil
}

// Ping sends a websocket ping control frame.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client %s: %w", c.id, ErrClientClosed)
	}

	deadline := time.Now().Add(c.writeTimeout)
	if c.writeTimeout <= 0 {
		deadline = time.Time{}
	}

	if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		return fmt.Errorf("client %s: failed to ping: %w", c.id, err)
	}

	return nil
}

// Close closes the connection once; later calls are no-ops. Queued
// messages are dropped.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.pending = nil

	return c.conn.Close()
}
