package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create_room" // 创建房间
	MsgJoinRoom   MessageType = "join_room"   // 加入房间
	MsgStartGame  MessageType = "start_game"  // 房主开始对局

	// 对局操作
	MsgDrawDeck    MessageType = "draw-deck"    // 从牌堆摸牌
	MsgDrawDiscard MessageType = "draw-discard" // 从弃牌堆摸牌
	MsgDiscard     MessageType = "discard"      // 弃牌
	MsgGin         MessageType = "gin"          // 宣告 Gin
	MsgRematch     MessageType = "rematch"      // 投票重赛
	MsgHandOrder   MessageType = "hand_order"   // 上报手牌摆放顺序

	// 信息查询
	MsgGetStats       MessageType = "get_stats"        // 查询个人战绩
	MsgGetLeaderboard MessageType = "get_leaderboard"  // 查询排行榜
	MsgGetOnlineCount MessageType = "get_online_count" // 查询在线人数
)

// 旧版客户端使用的别名，分发前统一归一化
const (
	MsgDrawDeckAlias    MessageType = "draw_deck"
	MsgDrawDiscardAlias MessageType = "draw_discard"
	MsgGinAlias         MessageType = "declare_gin"
	MsgRematchAlias     MessageType = "vote_rematch"
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgPong MessageType = "pong" // 心跳 pong
	MsgInit MessageType = "init" // 下发座位号

	// 房间相关
	MsgRoomUpdate MessageType = "room_update" // 房间人数变化
	MsgJoinOK     MessageType = "join_ok"     // 加入房间成功
	MsgJoinError  MessageType = "join_error"  // 房间结构性错误
	MsgGameStart  MessageType = "game_start"  // 对局开始

	// 对局流程
	MsgState          MessageType = "state"           // 按座位裁剪的状态快照
	MsgRoundReveal    MessageType = "round_reveal"    // 回合结算亮牌
	MsgTimeoutDiscard MessageType = "timeout_discard" // 超时强制弃牌
	MsgTimeoutPass    MessageType = "timeout_pass"    // 超时但无牌可弃
	MsgDeckReshuffle  MessageType = "deck_reshuffle"  // 弃牌堆回填牌堆

	// 信息查询结果
	MsgStatsResult       MessageType = "stats_result"       // 个人战绩
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜
	MsgOnlineCount       MessageType = "online_count"       // 在线人数

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// Normalize 将旧版别名映射为规范消息类型
func (t MessageType) Normalize() MessageType {
	switch t {
	case MsgDrawDeckAlias:
		return MsgDrawDeck
	case MsgDrawDiscardAlias:
		return MsgDrawDiscard
	case MsgGinAlias:
		return MsgGin
	case MsgRematchAlias:
		return MsgRematch
	}
	return t
}

// Encode 将消息编码为 JSON 字节
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode 从 JSON 字节解码消息
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
