package protocol

// 错误码
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001
	ErrCodeRateLimit  = 1002 // 速率限制

	ErrCodeRoomNotFound       = 2001
	ErrCodeRoomFull           = 2002
	ErrCodeRoomExists         = 2003
	ErrCodeInvalidRoomCode    = 2004
	ErrCodeNotEnoughPlayers   = 2005
	ErrCodeUnsupportedPlayers = 2006
	ErrCodeNotInRoom          = 2007

	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息（面向英文客户端）
var ErrorMessages = map[int]string{
	ErrCodeUnknown:            "Unknown error.",
	ErrCodeInvalidMsg:         "Invalid message format.",
	ErrCodeRateLimit:          "Too many requests.",
	ErrCodeRoomNotFound:       "Room not found.",
	ErrCodeRoomFull:           "Room is full.",
	ErrCodeRoomExists:         "Code already exists. Try again.",
	ErrCodeInvalidRoomCode:    "Invalid room code.",
	ErrCodeNotEnoughPlayers:   "Need more players to start.",
	ErrCodeUnsupportedPlayers: "4-player not supported yet (2-player only for now).",
	ErrCodeNotInRoom:          "You are not in a room.",
	ErrCodeServerMaintenance:  "Server is under maintenance.",
}
