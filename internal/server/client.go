package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
)

const (
	writeWait      = 10 * time.Second    // 写超时
	pongWait       = 60 * time.Second    // 未收到 pong 的最长等待
	pingPeriod     = (pongWait * 9) / 10 // ping 间隔，必须小于 pongWait
	maxMessageSize = 4096                // 单条消息大小上限
	sendBufferSize = 64                  // 发送缓冲区长度
)

// Client 一条 WebSocket 连接
type Client struct {
	ID   string
	IP   string
	conn *websocket.Conn

	server *Server
	send   chan []byte

	room string
	seat int

	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewClient 创建客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		conn:   conn,
		server: s,
		send:   make(chan []byte, sendBufferSize),
		seat:   -1,
	}
}

// GetID 返回客户端 ID
func (c *Client) GetID() string { return c.ID }

// GetRoom 返回所在房间号
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// SetRoom 设置所在房间号
func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = code
}

// GetSeat 返回座位号，未入座为 -1
func (c *Client) GetSeat() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seat
}

// SetSeat 设置座位号
func (c *Client) SetSeat(seat int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seat = seat
}

// SendMessage 发送消息。缓冲区满说明客户端已跟不上，直接断开。
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码失败: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("🚫 客户端 %s 发送缓冲区已满，断开连接", c.ID)
		c.Close()
	}
}

// Close 关闭连接
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump 读协程：解码消息并交给分发器
func (c *Client) ReadPump() {
	defer func() {
		c.server.handleDisconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("读取消息异常: %v", err)
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		// 消息速率限制
		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			codec.PutMessage(msg)
			log.Printf("🚫 客户端 %s 消息过于频繁，断开连接", c.ID)
			return
		}
		if warning {
			log.Printf("⚠️ 客户端 %s 消息频率接近上限", c.ID)
		}

		// 分发是同步的，处理完即可归还池中
		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 写协程：排空发送缓冲并定期发 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
