package handler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellisandco/gin-rummy/internal/game/room"
	"github.com/ellisandco/gin-rummy/internal/game/session"
	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/server/storage"
	"github.com/ellisandco/gin-rummy/internal/testutil"
)

// newTestHandler 组装一个 miniredis 兜底的完整处理器
func newTestHandler(t *testing.T) (*Handler, *testutil.MockServer, *storage.LeaderboardManager) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	gameCfg := session.Config{
		TurnTimeout:      time.Hour,
		RevealDelay:      time.Hour,
		RematchCountdown: time.Hour,
		TargetScore:      10,
	}

	lb := storage.NewLeaderboardManager(rdb)
	rm := room.NewRoomManager(storage.NewRedisStore(rdb), lb, gameCfg, 10*time.Minute)

	srv := &testutil.MockServer{}
	h := NewHandler(HandlerDeps{Server: srv, RoomManager: rm, Leaderboard: lb})
	return h, srv, lb
}

// messageIndex 消息在发送序列中的下标，未找到返回 -1
func messageIndex(c *testutil.SimpleClient, msgType protocol.MessageType) int {
	for i, msg := range c.SentMessages() {
		if msg.Type == msgType {
			return i
		}
	}
	return -1
}

func TestHandlePing(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("p1")

	h.Handle(client, codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 12345}))

	pong := client.LastMessageOfType(protocol.MsgPong)
	require.NotNil(t, pong)
	p, err := codec.ParsePayload[protocol.PongPayload](pong)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), p.ClientTimestamp)
	assert.Positive(t, p.ServerTimestamp)
}

func TestHandleUnknownType(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("p1")

	h.Handle(client, codec.MustNewMessage(protocol.MessageType("bogus"), nil))

	errMsg := client.LastMessageOfType(protocol.MsgError)
	require.NotNil(t, errMsg)
	p, err := codec.ParsePayload[protocol.ErrorPayload](errMsg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, p.Code)
}

func TestHandleCreateRoom(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("IsMaintenanceMode").Return(false)

	client := testutil.NewSimpleClient("p1")
	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Code: "room1"}))

	initMsg := client.LastMessageOfType(protocol.MsgInit)
	require.NotNil(t, initMsg)
	ip, err := codec.ParsePayload[protocol.InitPayload](initMsg)
	require.NoError(t, err)
	assert.Equal(t, 0, ip.PlayerID)

	// The creator learns the room through room_update; join_ok is for joiners
	assert.Nil(t, client.LastMessageOfType(protocol.MsgJoinOK))

	upd := client.LastMessageOfType(protocol.MsgRoomUpdate)
	require.NotNil(t, upd)
	up, err := codec.ParsePayload[protocol.RoomUpdatePayload](upd)
	require.NoError(t, err)
	assert.Equal(t, "ROOM1", up.Code)
}

func TestHandleCreateRoom_Maintenance(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("IsMaintenanceMode").Return(true)

	client := testutil.NewSimpleClient("p1")
	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Code: "room1"}))

	errMsg := client.LastMessageOfType(protocol.MsgError)
	require.NotNil(t, errMsg)
	p, err := codec.ParsePayload[protocol.ErrorPayload](errMsg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, p.Code)
	assert.Nil(t, client.LastMessageOfType(protocol.MsgJoinOK))
}

func TestHandleCreateRoom_InvalidCode(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("IsMaintenanceMode").Return(false)

	client := testutil.NewSimpleClient("p1")
	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Code: "ab"}))

	errMsg := client.LastMessageOfType(protocol.MsgJoinError)
	require.NotNil(t, errMsg)
	p, err := codec.ParsePayload[protocol.JoinErrorPayload](errMsg)
	require.NoError(t, err)
	assert.Equal(t, "Invalid room code.", p.Message)
}

func TestHandleJoinRoom_NotFound(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("IsMaintenanceMode").Return(false)

	client := testutil.NewSimpleClient("p1")
	h.Handle(client, codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{Code: "NOPE"}))

	errMsg := client.LastMessageOfType(protocol.MsgJoinError)
	require.NotNil(t, errMsg)
	p, err := codec.ParsePayload[protocol.JoinErrorPayload](errMsg)
	require.NoError(t, err)
	assert.Equal(t, "Room not found.", p.Message)
}

// startGameViaHandler 走消息通道把两个玩家带进同一局：
// 建房、加入、房主开局
func startGameViaHandler(t *testing.T, h *Handler) (*testutil.SimpleClient, *testutil.SimpleClient) {
	t.Helper()

	c1 := testutil.NewSimpleClient("p1")
	c2 := testutil.NewSimpleClient("p2")

	h.Handle(c1, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Code: "ROOM"}))
	h.Handle(c2, codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{Code: "ROOM"}))
	h.Handle(c1, codec.MustNewMessage(protocol.MsgStartGame, nil))

	game := h.roomManager.GetRoom("ROOM").GetGame()
	require.NotNil(t, game)
	t.Cleanup(game.Stop)

	return c1, c2
}

func TestHandleStartGame_HostDriven(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("IsMaintenanceMode").Return(false)

	c1 := testutil.NewSimpleClient("p1")
	c2 := testutil.NewSimpleClient("p2")

	h.Handle(c1, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Code: "ROOM"}))
	h.Handle(c2, codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{Code: "ROOM"}))

	// A full room waits for the host; the joiner cannot start it
	assert.Nil(t, h.roomManager.GetRoom("ROOM").GetGame())
	h.Handle(c2, codec.MustNewMessage(protocol.MsgStartGame, nil))
	assert.Nil(t, h.roomManager.GetRoom("ROOM").GetGame())

	h.Handle(c1, codec.MustNewMessage(protocol.MsgStartGame, nil))
	game := h.roomManager.GetRoom("ROOM").GetGame()
	require.NotNil(t, game)
	t.Cleanup(game.Stop)

	// Both players are in the game with the first snapshot delivered
	for _, c := range []*testutil.SimpleClient{c1, c2} {
		assert.NotNil(t, c.LastMessageOfType(protocol.MsgGameStart))
		assert.NotNil(t, c.LastMessageOfType(protocol.MsgState))
	}

	// The joiner must learn their seat before the game starts
	initIdx := messageIndex(c2, protocol.MsgInit)
	okIdx := messageIndex(c2, protocol.MsgJoinOK)
	startIdx := messageIndex(c2, protocol.MsgGameStart)
	require.GreaterOrEqual(t, initIdx, 0)
	assert.Less(t, initIdx, startIdx)
	assert.Less(t, okIdx, startIdx)
}

// currentTurnClient 根据对局快照找出该行动的客户端
func currentTurnClient(t *testing.T, h *Handler, c1, c2 *testutil.SimpleClient) *testutil.SimpleClient {
	t.Helper()

	snap := h.roomManager.GetRoom("ROOM").GetGame().Snapshot()
	if snap.CurrentPlayer == 0 {
		return c1
	}
	return c2
}

func TestGameMessages_AliasNormalization(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("IsMaintenanceMode").Return(false)

	c1, c2 := startGameViaHandler(t, h)
	actor := currentTurnClient(t, h, c1, c2)

	// Legacy "draw_deck" must be routed like "draw-deck"
	h.Handle(actor, codec.MustNewMessage(protocol.MsgDrawDeckAlias, nil))

	snap := h.roomManager.GetRoom("ROOM").GetGame().Snapshot()
	assert.Equal(t, "discard", snap.Phase)
}

func TestHandleDiscard_LegacyCardObject(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("IsMaintenanceMode").Return(false)

	c1, c2 := startGameViaHandler(t, h)
	actor := currentTurnClient(t, h, c1, c2)
	before := h.roomManager.GetRoom("ROOM").GetGame().Snapshot().CurrentPlayer

	h.Handle(actor, codec.MustNewMessage(protocol.MsgDrawDeck, nil))

	// Old clients send the card object instead of a cardId
	state, err := codec.ParsePayload[protocol.StatePayload](actor.LastMessageOfType(protocol.MsgState))
	require.NoError(t, err)
	require.NotEmpty(t, state.YourHand)
	first := state.YourHand[0]

	h.Handle(actor, codec.MustNewMessage(protocol.MsgDiscard, protocol.DiscardPayload{
		Card: &protocol.CardInfo{Rank: first.Rank, Suit: first.Suit},
	}))

	snap := h.roomManager.GetRoom("ROOM").GetGame().Snapshot()
	assert.Equal(t, 1-before, snap.CurrentPlayer)
}

func TestGameMessages_IgnoredWithoutRoom(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("stray")

	// Game traffic from a client with no room is silently dropped
	h.Handle(client, codec.MustNewMessage(protocol.MsgDrawDeck, nil))
	h.Handle(client, codec.MustNewMessage(protocol.MsgDiscard, protocol.DiscardPayload{CardID: "A♠"}))
	h.Handle(client, codec.MustNewMessage(protocol.MsgGin, nil))

	assert.Empty(t, client.SentMessages())
}

func TestHandleGetStats(t *testing.T) {
	t.Parallel()

	h, _, lb := newTestHandler(t)
	require.NoError(t, lb.RecordMatchResult(context.Background(), "p1", "p2", 30))

	client := testutil.NewSimpleClient("p1")
	h.Handle(client, codec.MustNewMessage(protocol.MsgGetStats, nil))

	msg := client.LastMessageOfType(protocol.MsgStatsResult)
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[protocol.StatsResultPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.PlayerID)
	assert.Equal(t, int64(1), p.Wins)
	assert.Equal(t, int64(30), p.Points)
	assert.InDelta(t, 100.0, p.WinRate, 0.01)
}

func TestHandleGetLeaderboard(t *testing.T) {
	t.Parallel()

	h, _, lb := newTestHandler(t)
	ctx := context.Background()
	require.NoError(t, lb.RecordMatchResult(ctx, "alice", "bob", 10))
	require.NoError(t, lb.RecordMatchResult(ctx, "alice", "bob", 10))
	require.NoError(t, lb.RecordMatchResult(ctx, "bob", "alice", 10))

	client := testutil.NewSimpleClient("p1")
	h.Handle(client, codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Limit: 2}))

	msg := client.LastMessageOfType(protocol.MsgLeaderboardResult)
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[protocol.LeaderboardResultPayload](msg)
	require.NoError(t, err)
	require.Len(t, p.Entries, 2)
	assert.Equal(t, protocol.LeaderboardEntry{Rank: 1, PlayerID: "alice", Wins: 2}, p.Entries[0])
	assert.Equal(t, protocol.LeaderboardEntry{Rank: 2, PlayerID: "bob", Wins: 1}, p.Entries[1])
}

func TestHandleGetOnlineCount(t *testing.T) {
	t.Parallel()

	h, srv, _ := newTestHandler(t)
	srv.On("GetOnlineCount").Return(7)

	client := testutil.NewSimpleClient("p1")
	h.Handle(client, codec.MustNewMessage(protocol.MsgGetOnlineCount, nil))

	msg := client.LastMessageOfType(protocol.MsgOnlineCount)
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[protocol.OnlineCountPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Count)
}
