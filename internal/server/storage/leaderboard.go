package storage

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// PlayerStats 玩家战绩
type PlayerStats struct {
	PlayerID string `json:"player_id"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
	Points   int64  `json:"points"` // 累计让对手吃下的死牌分
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Wins     int64  `json:"wins"`
}

// LeaderboardManager 战绩与排行榜存储。
// 战绩存 hash，排行榜用 sorted set 按胜场排序。
type LeaderboardManager struct {
	client *redis.Client
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{client: client}
}

// RecordMatchResult 记录一场比赛结果
func (lm *LeaderboardManager) RecordMatchResult(ctx context.Context, winnerID, loserID string, loserPoints int64) error {
	pipe := lm.client.Pipeline()

	pipe.HIncrBy(ctx, statsKeyPrefix+winnerID, "wins", 1)
	pipe.HIncrBy(ctx, statsKeyPrefix+winnerID, "points", loserPoints)
	pipe.HIncrBy(ctx, statsKeyPrefix+loserID, "losses", 1)
	pipe.ZIncrBy(ctx, leaderboardKey, 1, winnerID)

	_, err := pipe.Exec(ctx)
	return err
}

// GetPlayerStats 获取玩家战绩
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	data, err := lm.client.HGetAll(ctx, statsKeyPrefix+playerID).Result()
	if err != nil {
		return nil, err
	}

	stats := &PlayerStats{PlayerID: playerID}
	stats.Wins, _ = strconv.ParseInt(data["wins"], 10, 64)
	stats.Losses, _ = strconv.ParseInt(data["losses"], 10, 64)
	stats.Points, _ = strconv.ParseInt(data["points"], 10, 64)

	return stats, nil
}

// GetTopPlayers 按胜场取排行榜前 n 名
func (lm *LeaderboardManager) GetTopPlayers(ctx context.Context, n int64) ([]LeaderboardEntry, error) {
	results, err := lm.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, r := range results {
		id, ok := r.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{PlayerID: id, Wins: int64(r.Score)})
	}
	return entries, nil
}
