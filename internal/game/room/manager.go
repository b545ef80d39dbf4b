package room

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ellisandco/gin-rummy/internal/apperrors"
	"github.com/ellisandco/gin-rummy/internal/game/session"
	"github.com/ellisandco/gin-rummy/internal/server/storage"
	"github.com/ellisandco/gin-rummy/internal/types"
)

const (
	roomCodeMinLength = 4 // 房间号最短长度
	playersPerRoom    = 2 // 目前只支持双人对局
)

// RoomManager 房间管理器
type RoomManager struct {
	redisStore  *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	gameCfg     session.Config
	roomTimeout time.Duration
	rooms       map[string]*Room
	mu          sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(rs *storage.RedisStore, lb *storage.LeaderboardManager, gameCfg session.Config, roomTimeout time.Duration) *RoomManager {
	rm := &RoomManager{
		redisStore:  rs,
		leaderboard: lb,
		gameCfg:     gameCfg,
		roomTimeout: roomTimeout,
		rooms:       make(map[string]*Room),
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// normalizeCode 房间号归一化：去首尾空白并转大写
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom 用玩家自选的房间号创建房间
func (rm *RoomManager) CreateRoom(client types.ClientInterface, code string, playersNeeded, targetScore int) (*Room, error) {
	code = normalizeCode(code)
	if len(code) < roomCodeMinLength {
		return nil, apperrors.ErrInvalidRoomCode
	}

	if playersNeeded == 0 {
		playersNeeded = playersPerRoom
	}
	if playersNeeded != playersPerRoom {
		return nil, apperrors.ErrUnsupportedPlayers
	}

	if targetScore <= 0 {
		targetScore = rm.gameCfg.TargetScore
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.rooms[code]; exists {
		return nil, apperrors.ErrRoomExists
	}

	room := &Room{
		Code:          code,
		State:         RoomStateWaiting,
		PlayersNeeded: playersNeeded,
		TargetScore:   targetScore,
		Clients:       make([]types.ClientInterface, 0, playersNeeded),
		CreatedAt:     time.Now(),
	}

	room.mu.Lock()
	room.addClient(client)
	room.mu.Unlock()

	rm.rooms[code] = room

	// 保存到 Redis
	go func() { _ = rm.redisStore.SaveRoom(context.Background(), room.Code, room.ToRoomData()) }()

	log.Printf("🏠 房间 %s 已创建，目标分 %d，玩家 %s", code, targetScore, client.GetID())

	return room, nil
}

// JoinRoom 加入房间，满员后自动开局
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code string) (*Room, error) {
	code = normalizeCode(code)

	rm.mu.Lock()
	room, exists := rm.rooms[code]
	rm.mu.Unlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	if len(room.Clients) >= room.PlayersNeeded {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomFull
	}
	seat := room.addClient(client)
	room.mu.Unlock()

	log.Printf("👤 玩家 %s 加入房间 %s（座位 %d）", client.GetID(), code, seat)

	room.SendRoomUpdate()

	// 保存到 Redis
	go func() { _ = rm.redisStore.SaveRoom(context.Background(), room.Code, room.ToRoomData()) }()

	return room, nil
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[normalizeCode(code)]
}

// GetRoomByClient 通过客户端获取其所在房间
func (rm *RoomManager) GetRoomByClient(client types.ClientInterface) *Room {
	code := client.GetRoom()
	if code == "" {
		return nil
	}
	return rm.GetRoom(code)
}

// GetActiveGamesCount 获取进行中的对局数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.RLock()
		if room.State == RoomStatePlaying {
			count++
		}
		room.mu.RUnlock()
	}
	return count
}

// GetRoomCount 获取房间总数
func (rm *RoomManager) GetRoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
