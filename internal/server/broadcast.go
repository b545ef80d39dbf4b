package server

import (
	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// BroadcastToIdle 向所有未进入房间的客户端广播（维护通知等）
func (s *Server) BroadcastToIdle(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		if client.GetRoom() == "" {
			client.SendMessage(msg)
		}
	}
}

// GetOnlineCount 获取在线客户端数量
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
