package session

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ellisandco/gin-rummy/internal/game/card"
	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// Phase 回合内子状态
type Phase string

const (
	PhaseDraw    Phase = "draw"    // 必须先摸牌
	PhaseDiscard Phase = "discard" // 摸牌后必须弃牌结束回合
)

// WinTypeGin 目前唯一的回合结束方式
const WinTypeGin = "gin"

const handSize = 10

// RoomConn 会话对所在房间的最小依赖：
// 广播与按座位定向发送。由 room.Room 实现，测试中用假实现替代。
type RoomConn interface {
	GetCode() string
	Broadcast(msg *protocol.Message)
	BroadcastExcept(seat int, msg *protocol.Message)
	SendToSeat(seat int, msg *protocol.Message)
}

// Config 对局参数
type Config struct {
	TurnTimeout      time.Duration // 单回合时限
	RevealDelay      time.Duration // 结算动画后自动开下一回合的延迟
	RematchCountdown time.Duration // 双方同意重赛后的倒计时
	TargetScore      int           // 比赛目标分

	// OnMatchOver 比赛结束回调（战绩入库），在会话锁外异步执行
	OnMatchOver func(winnerSeat, loserSeat, loserScore int)
}

// GameSession 一个房间的比赛状态机。
// 所有入口（客户端消息与计时器回调）都先取 mu，
// 因此房间内的状态变更严格串行，无需更细的锁。
type GameSession struct {
	room RoomConn
	cfg  Config

	// 当前回合
	deck          card.Deck
	discardPile   []card.Card
	hands         [2][]card.Card
	handOrders    [2][]string // 玩家上报的摆牌顺序（cardId 序列）
	currentPlayer int
	phase         Phase
	roundID       int
	roundOver     bool
	winner        int // -1 表示未产生
	winType       string

	// 比赛
	scores      [2]int
	targetScore int
	matchOver   bool
	matchWinner int // -1 表示未产生

	// 重赛
	rematchVotes           [2]bool
	rematchCountdownEndsAt time.Time

	// 回合先手交替，比赛开始与重赛时重新随机
	nextFirstPlayer int

	// 计时器。turnTimer 的回调携带布防时的 roundID 和 turnSeq，
	// 触发时与当前值比对，回合或轮次已推进则作废。
	turnTimer      *time.Timer
	turnSeq        int // 每次布防回合计时器递增
	turnEndsAt     time.Time
	nextRoundTimer *time.Timer
	rematchTimer   *time.Timer
	stopped        bool

	mu sync.Mutex
}

// NewGameSession 创建比赛会话
func NewGameSession(room RoomConn, cfg Config) *GameSession {
	return &GameSession{
		room:            room,
		cfg:             cfg,
		targetScore:     cfg.TargetScore,
		winner:          -1,
		matchWinner:     -1,
		nextFirstPlayer: rand.IntN(2),
	}
}

// Start 开始比赛（发第一回合）
func (gs *GameSession) Start() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.startRound()
}

// Stop 房间销毁时取消所有计时器。
// 此后任何已入队的回调都会因 stopped 标记而直接返回。
func (gs *GameSession) Stop() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.stopped = true
	gs.clearTurnTimer()
	if gs.nextRoundTimer != nil {
		gs.nextRoundTimer.Stop()
		gs.nextRoundTimer = nil
	}
	if gs.rematchTimer != nil {
		gs.rematchTimer.Stop()
		gs.rematchTimer = nil
	}
}
