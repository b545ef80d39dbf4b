package session

import (
	"github.com/ellisandco/gin-rummy/internal/game/rule"
	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/protocol/convert"
)

// broadcastState 向每个座位推送裁剪后的状态快照。
// 快照是权威状态：客户端收到后整体覆盖本地视图。
// 调用方必须持有 gs.mu。
func (gs *GameSession) broadcastState() {
	// 摸牌阶段且牌堆已空时顺带回填，摸牌阶段之外不动弃牌堆顶
	var replenishInfo *protocol.ReplenishInfo
	if gs.phase == PhaseDraw && len(gs.deck) == 0 {
		replenishInfo = gs.maybeReplenish()
	}

	for seat := 0; seat < 2; seat++ {
		payload := gs.buildState(seat, replenishInfo)
		gs.room.SendToSeat(seat, codec.MustNewMessage(protocol.MsgState, payload))
	}
}

// buildState 组装单个座位可见的快照：
// 只含自己的手牌，对手只暴露张数；轮次用布尔表达避免泄露座位假设。
// 调用方必须持有 gs.mu。
func (gs *GameSession) buildState(seat int, replenishInfo *protocol.ReplenishInfo) protocol.StatePayload {
	opp := 1 - seat
	layout := rule.DeadwoodFromOrder(gs.hands[seat], gs.handOrders[seat])

	var turnEndsAt int64
	if !gs.turnEndsAt.IsZero() {
		turnEndsAt = gs.turnEndsAt.UnixMilli()
	}

	var ginPlayerID *int
	if gs.roundOver {
		ginPlayerID = seatPtr(gs.winner)
	}

	var rematchEndsAt int64
	if !gs.rematchCountdownEndsAt.IsZero() {
		rematchEndsAt = gs.rematchCountdownEndsAt.UnixMilli()
	}

	return protocol.StatePayload{
		Code: gs.room.GetCode(),

		YourHand: convert.CardsToInfos(gs.hands[seat]),
		YourTurn: gs.currentPlayer == seat,
		Phase:    string(gs.phase),

		DiscardTop:   convert.TopCard(gs.discardPile),
		DeckCount:    len(gs.deck),
		OppHandCount: len(gs.hands[opp]),

		TurnEndsAt: turnEndsAt,
		TurnMs:     gs.cfg.TurnTimeout.Milliseconds(),

		DeadwoodCount:  layout.DeadwoodCount,
		DeadwoodPoints: layout.DeadwoodPoints,

		DeckReplenished:   replenishInfo != nil,
		DeckReplenishInfo: replenishInfo,

		RoundOver:    gs.roundOver,
		Winner:       seatPtr(gs.winner),
		WinType:      gs.winType,
		RoundID:      gs.roundID,
		GinPlayerID:  ginPlayerID,
		FinalDiscard: convert.TopCard(gs.discardPile),

		Scores:      gs.scores,
		TargetScore: gs.targetScore,
		MatchOver:   gs.matchOver,
		MatchWinner: seatPtr(gs.matchWinner),

		RematchVotes:           gs.rematchVotes,
		RematchCountdownEndsAt: rematchEndsAt,
	}
}
