package codec

import (
	"bytes"
	"sync"

	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// 消息与编码缓冲复用池。收发路径每条消息都要经过一次
// 反序列化和一次序列化，高峰期用池摊平分配。
var (
	messagePool = sync.Pool{
		New: func() any {
			return &protocol.Message{}
		},
	}

	bufferPool = sync.Pool{
		New: func() any {
			return new(bytes.Buffer)
		},
	}
)

// GetMessage 从池中取出一个消息对象
func GetMessage() *protocol.Message {
	return messagePool.Get().(*protocol.Message)
}

// PutMessage 将消息归还池中。
// 字段先清空，避免池子扣住上一条消息的 payload 不放。
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	msg.Type = ""
	msg.Payload = nil
	messagePool.Put(msg)
}

// getBuffer 从池中取出编码缓冲
func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer 将编码缓冲归还池中，容量保留
func putBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
