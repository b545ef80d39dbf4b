// Package ui implements the terminal client.
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
)

// Transport wraps the websocket connection for the terminal client.
type Transport struct {
	serverURL string

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	stopPing  chan struct{}
}

// NewTransport creates a transport for the given ws:// URL.
func NewTransport(serverURL string) *Transport {
	return &Transport{serverURL: serverURL}
}

// Connect dials the server.
func (t *Transport) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(t.serverURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.serverURL, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.stopPing = make(chan struct{})
	t.mu.Unlock()

	return nil
}

// IsConnected reports whether the connection is up.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// SendMessage writes a protocol message to the server.
func (t *Transport) SendMessage(msg *protocol.Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return fmt.Errorf("not connected")
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks until the next server message arrives.
// Reads happen on a single goroutine, so no lock here.
func (t *Transport) Receive() (*protocol.Message, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		return nil, err
	}
	return protocol.Decode(data)
}

// StartHeartbeat sends an application-level ping every 30 seconds.
func (t *Transport) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = t.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
					Timestamp: time.Now().UnixMilli(),
				}))
			case <-t.stopPing:
				return
			}
		}
	}()
}

// Close tears the connection down.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return
	}
	t.connected = false
	close(t.stopPing)
	_ = t.conn.Close()
}
