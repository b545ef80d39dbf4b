package session

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/ellisandco/gin-rummy/internal/game/card"
	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// startRound 开启新回合：洗牌、各发 10 张、翻一张弃牌。
// 调用方必须持有 gs.mu。
func (gs *GameSession) startRound() {
	gs.roundID++

	deck := card.NewDeck()
	deck.Shuffle()

	gs.deck = deck
	gs.discardPile = gs.discardPile[:0]
	gs.roundOver = false
	gs.winner = -1
	gs.winType = ""

	gs.currentPlayer = gs.nextFirstPlayer
	gs.nextFirstPlayer = 1 - gs.nextFirstPlayer
	gs.phase = PhaseDraw

	for seat := range gs.hands {
		gs.hands[seat] = gs.hands[seat][:0]
	}
	for range handSize {
		gs.hands[0] = append(gs.hands[0], gs.popDeck())
		gs.hands[1] = append(gs.hands[1], gs.popDeck())
	}
	gs.discardPile = append(gs.discardPile, gs.popDeck())

	// 初始手牌按点数排好，并以此顺序播种摆牌记录，
	// 保证首个快照的死牌计算与玩家看到的摆放一致
	for seat := range gs.hands {
		gs.hands[seat] = card.SortForDeal(gs.hands[seat])
		gs.handOrders[seat] = card.IDs(gs.hands[seat])
	}

	log.Printf("🃏 房间 %s 回合 %d 开始，先手座位 %d", gs.room.GetCode(), gs.roundID, gs.currentPlayer)

	gs.startTurnTimer()
	gs.broadcastState()
}

// popDeck 取牌堆顶（切片末尾）的一张牌
func (gs *GameSession) popDeck() card.Card {
	c := gs.deck[len(gs.deck)-1]
	gs.deck = gs.deck[:len(gs.deck)-1]
	return c
}

// maybeReplenish 牌堆摸空时把弃牌堆洗回牌堆。
// 弃牌堆顶保持原样可见；不足 2 张时无法拆出"可见顶+新牌堆"，不处理。
// 返回回填信息，未发生回填返回 nil。调用方必须持有 gs.mu。
func (gs *GameSession) maybeReplenish() *protocol.ReplenishInfo {
	if len(gs.deck) > 0 {
		return nil
	}
	if len(gs.discardPile) < 2 {
		return nil
	}

	before := len(gs.deck)

	top := gs.discardPile[len(gs.discardPile)-1]
	toShuffle := make(card.Deck, len(gs.discardPile)-1)
	copy(toShuffle, gs.discardPile[:len(gs.discardPile)-1])
	toShuffle.Shuffle()

	gs.deck = toShuffle
	gs.discardPile = gs.discardPile[:0]
	gs.discardPile = append(gs.discardPile, top)

	return &protocol.ReplenishInfo{
		Before: before,
		After:  len(gs.deck),
		TS:     time.Now().UnixMilli(),
	}
}

// scheduleNextRound 结算动画窗口结束后自动开下一回合。
// 回调比对布防时的 roundID：期间发生了重赛重置则作废。
// 调用方必须持有 gs.mu。
func (gs *GameSession) scheduleNextRound() {
	armedRound := gs.roundID

	if gs.nextRoundTimer != nil {
		gs.nextRoundTimer.Stop()
	}
	gs.nextRoundTimer = time.AfterFunc(gs.cfg.RevealDelay, func() {
		gs.mu.Lock()
		defer gs.mu.Unlock()

		if gs.stopped || gs.matchOver || gs.roundID != armedRound || !gs.roundOver {
			return
		}
		gs.startRound()
	})
}

// resetMatch 重赛倒计时结束后的比赛重置。调用方必须持有 gs.mu。
func (gs *GameSession) resetMatch() {
	gs.rematchVotes = [2]bool{}
	gs.rematchCountdownEndsAt = time.Time{}

	gs.scores = [2]int{}
	gs.matchOver = false
	gs.matchWinner = -1
	gs.roundOver = false
	gs.winner = -1
	gs.winType = ""
	for seat := range gs.handOrders {
		gs.handOrders[seat] = nil
	}

	gs.nextFirstPlayer = rand.IntN(2)

	log.Printf("🔄 房间 %s 重赛开始", gs.room.GetCode())
	gs.startRound()
}
