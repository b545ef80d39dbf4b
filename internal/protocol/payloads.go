package protocol

// 线格式沿用浏览器客户端既有的 camelCase 字段名，
// 座位号 0/1 即 playerId；winner 等字段为 null 时表示尚未产生。

// --- 通用数据结构 ---

// CardInfo 牌信息
type CardInfo struct {
	Rank string `json:"rank"` // A, 2..10, J, Q, K
	Suit string `json:"suit"` // ♠ ♥ ♦ ♣
}

// ReplenishInfo 牌堆回填信息
type ReplenishInfo struct {
	Before int   `json:"before"` // 回填前牌堆数量
	After  int   `json:"after"`  // 回填后牌堆数量
	TS     int64 `json:"ts"`     // 发生时间（毫秒时间戳）
}

// LayoutInfo 一名玩家的组牌布局（顺子/刻子分组与死牌）
type LayoutInfo struct {
	MeldGroups     [][]CardInfo `json:"meldGroups"`
	Deadwood       []CardInfo   `json:"deadwood"`
	DeadwoodPoints int          `json:"deadwoodPoints"`
	DeadwoodCount  int          `json:"deadwoodCount"`
}

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Code          string `json:"code"`
	PlayersNeeded int    `json:"playersNeeded"`
	PointsTarget  int    `json:"pointsTarget"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	Code string `json:"code"`
}

// StartGamePayload 开始对局请求
type StartGamePayload struct {
	Code string `json:"code"`
}

// DiscardPayload 弃牌请求
type DiscardPayload struct {
	CardID string    `json:"cardId"`
	Card   *CardInfo `json:"card,omitempty"` // 旧版客户端直接传牌对象
}

// HandOrderPayload 手牌摆放顺序上报
type HandOrderPayload struct {
	Order []string `json:"order"` // cardId 序列
}

// GetLeaderboardPayload 排行榜查询请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit"`
}

// --- 服务端响应 Payloads ---

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// InitPayload 座位号下发
type InitPayload struct {
	PlayerID int `json:"playerId"`
}

// RoomUpdatePayload 房间人数更新
type RoomUpdatePayload struct {
	Code   string `json:"code"`
	Joined int    `json:"joined"`
	Needed int    `json:"needed"`
}

// JoinOKPayload 加入房间成功
type JoinOKPayload struct {
	Code string `json:"code"`
}

// JoinErrorPayload 房间结构性错误（房间满、码冲突等）
type JoinErrorPayload struct {
	Message string `json:"message"`
}

// GameStartPayload 对局开始通知
type GameStartPayload struct {
	Code string `json:"code"`
}

// StatePayload 按座位裁剪的完整状态快照，每次状态变更后推送
type StatePayload struct {
	Code string `json:"code"`

	YourHand []CardInfo `json:"yourHand"`
	YourTurn bool       `json:"yourTurn"`
	Phase    string     `json:"phase"` // draw / discard

	DiscardTop   *CardInfo `json:"discardTop"`
	DeckCount    int       `json:"deckCount"`
	OppHandCount int       `json:"oppHandCount"`

	TurnEndsAt int64 `json:"turnEndsAt"` // 毫秒时间戳，0 表示无计时
	TurnMs     int64 `json:"turnMs"`

	DeadwoodCount  int `json:"deadwoodCount"`
	DeadwoodPoints int `json:"deadwoodPoints"`

	DeckReplenished   bool           `json:"deckReplenished"`
	DeckReplenishInfo *ReplenishInfo `json:"deckReplenishInfo"`

	RoundOver    bool      `json:"roundOver"`
	Winner       *int      `json:"winner"`
	WinType      string    `json:"winType,omitempty"`
	RoundID      int       `json:"roundId"`
	GinPlayerID  *int      `json:"ginPlayerId"`
	FinalDiscard *CardInfo `json:"finalDiscard"`

	Scores      [2]int `json:"scores"`
	TargetScore int    `json:"targetScore"`
	MatchOver   bool   `json:"matchOver"`
	MatchWinner *int   `json:"matchWinner"`

	RematchVotes           [2]bool `json:"rematchVotes"`
	RematchCountdownEndsAt int64   `json:"rematchCountdownEndsAt"` // 0 表示未开始
}

// RoundRevealPayload 回合结算亮牌（双方手牌与布局，供结算动画使用）
type RoundRevealPayload struct {
	Code    string `json:"code"`
	RoundID int    `json:"roundId"`

	GinPlayerID  int       `json:"ginPlayerId"`
	FinalDiscard *CardInfo `json:"finalDiscard"`

	Winner  int    `json:"winner"`
	Loser   int    `json:"loser"`
	WinType string `json:"winType"`

	Hands       map[int][]CardInfo `json:"hands"`
	HandOrders  map[int][]string   `json:"handOrders"`
	Layouts     map[int]LayoutInfo `json:"layouts"`
	LoserPoints int                `json:"loserPoints"` // 败方本回合计入的死牌分

	Scores      [2]int `json:"scores"`
	TargetScore int    `json:"targetScore"`
	MatchOver   bool   `json:"matchOver"`
	MatchWinner *int   `json:"matchWinner"`
}

// TimeoutDiscardPayload 超时强制弃牌通知。
// 仅发给被弃牌的玩家时携带 cardId，对其余玩家广播时省略。
type TimeoutDiscardPayload struct {
	PlayerID int    `json:"playerId"`
	CardID   string `json:"cardId,omitempty"`
}

// TimeoutPassPayload 超时但无需弃牌（未摸牌即超时）
type TimeoutPassPayload struct {
	PlayerID int `json:"playerId"`
}

// DeckReshufflePayload 弃牌堆回填通知
type DeckReshufflePayload struct {
	Code      string         `json:"code"`
	DeckCount int            `json:"deckCount"`
	Info      *ReplenishInfo `json:"info"`
}

// StatsResultPayload 个人战绩
type StatsResultPayload struct {
	PlayerID string  `json:"playerId"`
	Wins     int64   `json:"wins"`
	Losses   int64   `json:"losses"`
	Points   int64   `json:"points"`
	WinRate  float64 `json:"winRate"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Wins     int64  `json:"wins"`
}

// LeaderboardResultPayload 排行榜
type LeaderboardResultPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// OnlineCountPayload 在线人数
type OnlineCountPayload struct {
	Count int `json:"count"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
