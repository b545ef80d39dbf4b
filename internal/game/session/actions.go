package session

import (
	"log"
	"time"

	"github.com/ellisandco/gin-rummy/internal/game/rule"
	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/protocol/convert"
)

// 客户端动作入口。前置条件不满足时一律静默忽略：
// 过期/非法消息不是错误，只是客户端与服务端状态短暂不一致。

// HandleHandOrder 记录玩家的摆牌顺序，仅做记账，任何状态下都接受
func (gs *GameSession) HandleHandOrder(seat int, order []string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if seat < 0 || seat > 1 || order == nil {
		return
	}
	gs.handOrders[seat] = append([]string(nil), order...)
}

// HandleDrawDeck 从牌堆摸牌
func (gs *GameSession) HandleDrawDeck(seat int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if !gs.turnAllowed(seat) || gs.phase != PhaseDraw {
		return
	}

	if info := gs.maybeReplenish(); info != nil {
		gs.room.Broadcast(codec.MustNewMessage(protocol.MsgDeckReshuffle, protocol.DeckReshufflePayload{
			Code:      gs.room.GetCode(),
			DeckCount: info.After,
			Info:      info,
		}))
	}

	// 回填后仍然没牌（弃牌堆也见底），摸牌失败
	if len(gs.deck) == 0 {
		return
	}

	gs.hands[seat] = append(gs.hands[seat], gs.popDeck())
	gs.phase = PhaseDiscard
	gs.broadcastState()
}

// HandleDrawDiscard 从弃牌堆摸顶牌
func (gs *GameSession) HandleDrawDiscard(seat int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if !gs.turnAllowed(seat) || gs.phase != PhaseDraw {
		return
	}
	if len(gs.discardPile) == 0 {
		return
	}

	top := gs.discardPile[len(gs.discardPile)-1]
	gs.discardPile = gs.discardPile[:len(gs.discardPile)-1]
	gs.hands[seat] = append(gs.hands[seat], top)
	gs.phase = PhaseDiscard
	gs.broadcastState()
}

// HandleDiscard 弃一张牌并结束回合
func (gs *GameSession) HandleDiscard(seat int, cardID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if !gs.turnAllowed(seat) || gs.phase != PhaseDiscard {
		return
	}
	if cardID == "" {
		return
	}

	idx := -1
	for i, c := range gs.hands[seat] {
		if c.ID() == cardID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	c := gs.hands[seat][idx]
	gs.hands[seat] = append(gs.hands[seat][:idx], gs.hands[seat][idx+1:]...)
	gs.discardPile = append(gs.discardPile, c)

	gs.advanceTurn()
}

// HandleGin 宣告 Gin：宣告方死牌 ≤1 张才有效
func (gs *GameSession) HandleGin(seat int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if !gs.turnAllowed(seat) || gs.phase != PhaseDiscard {
		return
	}

	winner := seat
	loser := 1 - seat

	// 从未上报过摆牌顺序就用当前手牌顺序兜底
	if len(gs.handOrders[winner]) == 0 {
		gs.handOrders[winner] = gs.currentHandIDs(winner)
	}

	winnerLayout := rule.DeadwoodFromOrder(gs.hands[winner], gs.handOrders[winner])
	if winnerLayout.DeadwoodCount > 1 {
		return
	}

	loserLayout := rule.DeadwoodFromOrder(gs.hands[loser], gs.handOrders[loser])

	// 计分规则（本变体）：败方把自己的死牌分加到自己头上，
	// 先达到目标分的一方输掉比赛
	gs.scores[loser] += loserLayout.DeadwoodPoints

	gs.roundOver = true
	gs.winner = winner
	gs.winType = WinTypeGin
	gs.clearTurnTimer()

	for s := range gs.scores {
		if gs.scores[s] >= gs.targetScore {
			gs.matchOver = true
			gs.matchWinner = 1 - s
			break
		}
	}

	log.Printf("🏆 房间 %s 座位 %d Gin（败方 +%d 分，matchOver=%v）",
		gs.room.GetCode(), winner, loserLayout.DeadwoodPoints, gs.matchOver)

	if gs.matchOver && gs.cfg.OnMatchOver != nil {
		winnerSeat, loserSeat := gs.matchWinner, 1-gs.matchWinner
		loserScore := gs.scores[loserSeat]
		go gs.cfg.OnMatchOver(winnerSeat, loserSeat, loserScore)
	}

	gs.broadcastRoundReveal(winner, loser, loserLayout.DeadwoodPoints)
	gs.broadcastState()

	if !gs.matchOver {
		gs.scheduleNextRound()
	}
}

// HandleRematch 重赛投票：双方都同意后启动倒计时，然后重置比赛
func (gs *GameSession) HandleRematch(seat int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if seat < 0 || seat > 1 {
		return
	}

	gs.rematchVotes[seat] = true
	gs.broadcastState()

	bothReady := gs.rematchVotes[0] && gs.rematchVotes[1]
	if !bothReady || !gs.rematchCountdownEndsAt.IsZero() {
		return
	}

	gs.rematchCountdownEndsAt = time.Now().Add(gs.cfg.RematchCountdown)
	gs.broadcastState()

	if gs.rematchTimer != nil {
		gs.rematchTimer.Stop()
	}
	gs.rematchTimer = time.AfterFunc(gs.cfg.RematchCountdown, func() {
		gs.mu.Lock()
		defer gs.mu.Unlock()

		// 倒计时落地时比赛必须仍是结束态，否则作废
		if gs.stopped || !gs.matchOver {
			return
		}
		gs.resetMatch()
	})
}

// turnAllowed 回合动作的公共门禁：回合/比赛未结束且轮到该座位
func (gs *GameSession) turnAllowed(seat int) bool {
	if seat < 0 || seat > 1 {
		return false
	}
	if gs.matchOver || gs.roundOver {
		return false
	}
	return seat == gs.currentPlayer
}

// advanceTurn 回合推进：换人、回到摸牌阶段、重新计时。
// 调用方必须持有 gs.mu。
func (gs *GameSession) advanceTurn() {
	gs.currentPlayer = 1 - gs.currentPlayer
	gs.phase = PhaseDraw

	gs.startTurnTimer()
	gs.broadcastState()
}

// currentHandIDs 当前手牌的 cardId 序列
func (gs *GameSession) currentHandIDs(seat int) []string {
	ids := make([]string, len(gs.hands[seat]))
	for i, c := range gs.hands[seat] {
		ids[i] = c.ID()
	}
	return ids
}

// broadcastRoundReveal 广播结算亮牌：双方手牌、摆放与组牌布局。
// 调用方必须持有 gs.mu。
func (gs *GameSession) broadcastRoundReveal(winner, loser, loserPoints int) {
	layouts := map[int]protocol.LayoutInfo{
		0: convert.LayoutToInfo(rule.DeadwoodFromOrder(gs.hands[0], gs.handOrders[0])),
		1: convert.LayoutToInfo(rule.DeadwoodFromOrder(gs.hands[1], gs.handOrders[1])),
	}

	gs.room.Broadcast(codec.MustNewMessage(protocol.MsgRoundReveal, protocol.RoundRevealPayload{
		Code:    gs.room.GetCode(),
		RoundID: gs.roundID,

		GinPlayerID:  winner,
		FinalDiscard: convert.TopCard(gs.discardPile),

		Winner:  winner,
		Loser:   loser,
		WinType: gs.winType,

		Hands: map[int][]protocol.CardInfo{
			0: convert.CardsToInfos(gs.hands[0]),
			1: convert.CardsToInfos(gs.hands[1]),
		},
		HandOrders: map[int][]string{
			0: append([]string(nil), gs.handOrders[0]...),
			1: append([]string(nil), gs.handOrders[1]...),
		},
		Layouts:     layouts,
		LoserPoints: loserPoints,

		Scores:      gs.scores,
		TargetScore: gs.targetScore,
		MatchOver:   gs.matchOver,
		MatchWinner: seatPtr(gs.matchWinner),
	}))
}

// seatPtr 座位号转可空指针，-1 表示 null
func seatPtr(seat int) *int {
	if seat < 0 {
		return nil
	}
	return &seat
}
