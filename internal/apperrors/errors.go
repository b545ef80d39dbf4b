package apperrors

import (
	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// GameError 游戏错误（房间和对局共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误，Message 会原样透传给客户端的 join_error
var (
	ErrRoomNotFound       = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "Room not found."}
	ErrRoomFull           = &GameError{Code: protocol.ErrCodeRoomFull, Message: "Room is full."}
	ErrRoomExists         = &GameError{Code: protocol.ErrCodeRoomExists, Message: "Code already exists. Try again."}
	ErrInvalidRoomCode    = &GameError{Code: protocol.ErrCodeInvalidRoomCode, Message: "Invalid room code."}
	ErrNotEnoughPlayers   = &GameError{Code: protocol.ErrCodeNotEnoughPlayers, Message: "Need more players to start."}
	ErrUnsupportedPlayers = &GameError{Code: protocol.ErrCodeUnsupportedPlayers, Message: "4-player not supported yet (2-player only for now)."}
	ErrNotInRoom          = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "You are not in a room."}
)
