package session

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
)

// startTurnTimer 布防回合计时器，先撤掉旧的，保证同一房间
// 永远只有一个在走的计时器。调用方必须持有 gs.mu。
func (gs *GameSession) startTurnTimer() {
	gs.clearTurnTimer()

	gs.turnSeq++
	armedRound, armedSeq := gs.roundID, gs.turnSeq
	gs.turnEndsAt = time.Now().Add(gs.cfg.TurnTimeout)
	gs.turnTimer = time.AfterFunc(gs.cfg.TurnTimeout, func() {
		gs.handleTurnTimeout(armedRound, armedSeq)
	})
}

// clearTurnTimer 撤销回合计时器。调用方必须持有 gs.mu。
func (gs *GameSession) clearTurnTimer() {
	if gs.turnTimer != nil {
		gs.turnTimer.Stop()
		gs.turnTimer = nil
	}
	gs.turnEndsAt = time.Time{}
}

// handleTurnTimeout 回合超时。
// 布防时捕获的 roundID/turnSeq 与当前值不一致说明回合或轮次已被推进，
// 回调作废——AfterFunc 的回调可能与 Stop 竞争，仅靠 Stop 不能保证不触发，
// 同一回合内手动弃牌后落地的旧回调也必须拦下，不能抢走对手刚开始的轮次。
func (gs *GameSession) handleTurnTimeout(armedRound, armedSeq int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.stopped || gs.roundID != armedRound || gs.turnSeq != armedSeq {
		return
	}
	if gs.roundOver || gs.matchOver {
		return
	}

	seat := gs.currentPlayer
	hand := gs.hands[seat]

	if len(hand) > handSize {
		// 已摸牌未弃牌：随机替他弃一张。
		// 只有当事人能看到被弃的是哪张，对手只收到超时事件。
		idx := rand.IntN(len(hand))
		c := hand[idx]
		gs.hands[seat] = append(hand[:idx], hand[idx+1:]...)
		gs.discardPile = append(gs.discardPile, c)

		log.Printf("⏰ 房间 %s 座位 %d 超时，强制弃牌 %s", gs.room.GetCode(), seat, c.ID())

		gs.room.SendToSeat(seat, codec.MustNewMessage(protocol.MsgTimeoutDiscard, protocol.TimeoutDiscardPayload{
			PlayerID: seat,
			CardID:   c.ID(),
		}))
		gs.room.BroadcastExcept(seat, codec.MustNewMessage(protocol.MsgTimeoutDiscard, protocol.TimeoutDiscardPayload{
			PlayerID: seat,
		}))
	} else {
		// 未摸牌即超时（多半是掉线未断开），不弃牌但照样让出回合，
		// 避免整桌挂死
		gs.room.Broadcast(codec.MustNewMessage(protocol.MsgTimeoutPass, protocol.TimeoutPassPayload{
			PlayerID: seat,
		}))
	}

	gs.advanceTurn()
}
