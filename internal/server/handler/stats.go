package handler

import (
	"context"

	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/types"
)

// --- 排行榜处理 ---

// handleGetStats 获取个人战绩
func (h *Handler) handleGetStats(client types.ClientInterface) {
	stats, err := h.leaderboard.GetPlayerStats(context.Background(), client.GetID())
	if err != nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "Failed to load stats."))
		return
	}

	winRate := 0.0
	if total := stats.Wins + stats.Losses; total > 0 {
		winRate = float64(stats.Wins) / float64(total) * 100
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, protocol.StatsResultPayload{
		PlayerID: stats.PlayerID,
		Wins:     stats.Wins,
		Losses:   stats.Losses,
		Points:   stats.Points,
		WinRate:  winRate,
	}))
}

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		payload = &protocol.GetLeaderboardPayload{Limit: 10}
	}

	// 限制请求数量
	if payload.Limit <= 0 || payload.Limit > 50 {
		payload.Limit = 10
	}

	entries, err := h.leaderboard.GetTopPlayers(context.Background(), int64(payload.Limit))
	if err != nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "Failed to load leaderboard."))
		return
	}

	protocolEntries := make([]protocol.LeaderboardEntry, 0, len(entries))
	for i, entry := range entries {
		protocolEntries = append(protocolEntries, protocol.LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: entry.PlayerID,
			Wins:     entry.Wins,
		})
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Entries: protocolEntries,
	}))
}

// handleGetOnlineCount 获取在线人数（按需）
func (h *Handler) handleGetOnlineCount(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgOnlineCount, protocol.OnlineCountPayload{
		Count: h.server.GetOnlineCount(),
	}))
}
