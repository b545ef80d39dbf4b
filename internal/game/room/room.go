package room

import (
	"sync"
	"time"

	"github.com/ellisandco/gin-rummy/internal/game/session"
	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/types"
)

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting RoomState = iota // 等待玩家加入
	RoomStatePlaying                  // 对局进行中
	RoomStateEnded                    // 已结束，等待清理
)

// Room 游戏房间。房间号由创建者指定，座位号就是 clients 的下标。
type Room struct {
	Code          string                  // 房间号
	State         RoomState               // 房间状态
	PlayersNeeded int                     // 开局所需人数
	TargetScore   int                     // 比赛目标分
	Clients       []types.ClientInterface // 玩家列表（下标即座位号）
	Game          *session.GameSession    // 进行中的对局，未开局为 nil
	CreatedAt     time.Time               // 创建时间

	mu sync.RWMutex
}

// GetCode 返回房间号
func (r *Room) GetCode() string {
	return r.Code
}

// Broadcast 向房间内所有玩家广播消息
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.Clients {
		c.SendMessage(msg)
	}
}

// BroadcastExcept 向指定座位之外的玩家广播消息
func (r *Room) BroadcastExcept(seat int, msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, c := range r.Clients {
		if i != seat {
			c.SendMessage(msg)
		}
	}
}

// SendToSeat 向指定座位发送消息，座位不存在时丢弃
func (r *Room) SendToSeat(seat int, msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if seat < 0 || seat >= len(r.Clients) {
		return
	}
	r.Clients[seat].SendMessage(msg)
}

// GetGame 返回进行中的对局，未开局为 nil
func (r *Room) GetGame() *session.GameSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Game
}

// ClientIDBySeat 返回指定座位的客户端 ID，座位不存在返回空串
func (r *Room) ClientIDBySeat(seat int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if seat < 0 || seat >= len(r.Clients) {
		return ""
	}
	return r.Clients[seat].GetID()
}

// PlayerCount 当前房间人数
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}

// IsFull 房间是否已满
func (r *Room) IsFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients) >= r.PlayersNeeded
}

// SendRoomUpdate 广播房间人数变化
func (r *Room) SendRoomUpdate() {
	r.mu.RLock()
	payload := protocol.RoomUpdatePayload{
		Code:   r.Code,
		Joined: len(r.Clients),
		Needed: r.PlayersNeeded,
	}
	r.mu.RUnlock()

	r.Broadcast(codec.MustNewMessage(protocol.MsgRoomUpdate, payload))
}

// addClient 添加玩家并分配座位。调用方必须持有 r.mu。
func (r *Room) addClient(client types.ClientInterface) int {
	seat := len(r.Clients)
	r.Clients = append(r.Clients, client)
	client.SetRoom(r.Code)
	client.SetSeat(seat)
	return seat
}

// removeClient 移除玩家并为剩余玩家重排座位。
// 返回是否找到该玩家。调用方必须持有 r.mu。
func (r *Room) removeClient(client types.ClientInterface) bool {
	idx := -1
	for i, c := range r.Clients {
		if c.GetID() == client.GetID() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	r.Clients = append(r.Clients[:idx], r.Clients[idx+1:]...)
	client.SetRoom("")
	client.SetSeat(-1)

	// 座位号塌缩后重新下发 init，保证剩余玩家的 playerId 与下标一致
	for seat, c := range r.Clients {
		c.SetSeat(seat)
		c.SendMessage(codec.MustNewMessage(protocol.MsgInit, protocol.InitPayload{PlayerID: seat}))
	}

	return true
}
