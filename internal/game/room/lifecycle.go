package room

import (
	"context"
	"log"
	"time"

	"github.com/ellisandco/gin-rummy/internal/apperrors"
	"github.com/ellisandco/gin-rummy/internal/game/session"
	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/types"
)

// StartGame 房主开局。满员后不会自动开始，
// 必须由 0 号座位显式发起，其余座位的请求静默忽略。
func (rm *RoomManager) StartGame(client types.ClientInterface) error {
	room := rm.GetRoomByClient(client)
	if room == nil {
		return apperrors.ErrNotInRoom
	}
	if client.GetSeat() != 0 {
		return nil // 只有房主能开局，其余人静默忽略
	}
	if !room.IsFull() {
		return apperrors.ErrNotEnoughPlayers
	}

	rm.startGame(room)
	return nil
}

// startGame 创建对局会话并开始第一回合
func (rm *RoomManager) startGame(room *Room) {
	room.mu.Lock()
	if room.State != RoomStateWaiting || room.Game != nil {
		room.mu.Unlock()
		return
	}

	cfg := rm.gameCfg
	cfg.TargetScore = room.TargetScore
	cfg.OnMatchOver = func(winnerSeat, loserSeat, loserScore int) {
		rm.recordMatchResult(room, winnerSeat, loserSeat, loserScore)
	}

	game := session.NewGameSession(room, cfg)
	room.Game = game
	room.State = RoomStatePlaying
	room.mu.Unlock()

	log.Printf("🎮 房间 %s 对局开始", room.Code)

	room.Broadcast(codec.MustNewMessage(protocol.MsgGameStart, protocol.GameStartPayload{Code: room.Code}))
	game.Start()

	go func() { _ = rm.redisStore.SaveRoom(context.Background(), room.Code, room.ToRoomData()) }()
}

// recordMatchResult 比赛结束后的战绩入库
func (rm *RoomManager) recordMatchResult(room *Room, winnerSeat, loserSeat, loserScore int) {
	winnerID := room.ClientIDBySeat(winnerSeat)
	loserID := room.ClientIDBySeat(loserSeat)
	if winnerID == "" || loserID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rm.leaderboard.RecordMatchResult(ctx, winnerID, loserID, int64(loserScore)); err != nil {
		log.Printf("战绩入库失败: %v", err)
	}
}

// RemoveClient 玩家断开连接后的房间清理。
// 对局进行中有人离开则整局作废，剩余玩家收到通知并回到等待状态。
func (rm *RoomManager) RemoveClient(client types.ClientInterface) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return
	}

	rm.mu.Lock()
	room, exists := rm.rooms[roomCode]
	rm.mu.Unlock()
	if !exists {
		return
	}

	room.mu.Lock()
	if !room.removeClient(client) {
		room.mu.Unlock()
		return
	}

	empty := len(room.Clients) == 0
	game := room.Game
	room.Game = nil
	room.State = RoomStateWaiting
	room.mu.Unlock()

	// Stop 会取 session 锁，必须在释放房间锁之后调用
	if game != nil {
		game.Stop()
		room.Broadcast(codec.NewJoinError("Player disconnected. Game ended."))
	}

	log.Printf("👋 玩家 %s 离开房间 %s", client.GetID(), roomCode)

	if empty {
		rm.mu.Lock()
		delete(rm.rooms, roomCode)
		rm.mu.Unlock()
		go func() { _ = rm.redisStore.DeleteRoom(context.Background(), roomCode) }()
		log.Printf("🏠 房间 %s 已解散", roomCode)
		return
	}

	room.SendRoomUpdate()
	go func() { _ = rm.redisStore.SaveRoom(context.Background(), room.Code, room.ToRoomData()) }()
}

// cleanupLoop 定期清理超时房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rm.cleanup()
	}
}

// cleanup 清理超时房间
func (rm *RoomManager) cleanup() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	now := time.Now()

	for code, room := range rm.rooms {
		room.mu.RLock()
		// 只清理等待状态且超时的房间
		if room.State == RoomStateWaiting && now.Sub(room.CreatedAt) > rm.roomTimeout {
			room.mu.RUnlock()
			room.Broadcast(codec.NewJoinError("Room closed due to inactivity."))
			for _, c := range room.Clients {
				c.SetRoom("")
				c.SetSeat(-1)
			}
			delete(rm.rooms, code)
			go func(code string) { _ = rm.redisStore.DeleteRoom(context.Background(), code) }(code)
			log.Printf("🏠 房间 %s 超时已清理", code)
		} else {
			room.mu.RUnlock()
		}
	}
}
