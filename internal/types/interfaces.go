package types

import (
	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
}

// ClientInterface 定义客户端接口。
// 座位号由房间分配，连接断开后随连接一起作废。
type ClientInterface interface {
	GetID() string
	GetRoom() string
	SetRoom(code string)
	GetSeat() int
	SetSeat(seat int)
	SendMessage(msg *protocol.Message)
	Close()
}
