package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellisandco/gin-rummy/internal/game/card"
	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// fakeRoom 实现 RoomConn，按座位记录会话发出的消息
type fakeRoom struct {
	mu      sync.Mutex
	perSeat [2][]*protocol.Message
}

func (f *fakeRoom) GetCode() string { return "TEST" }

func (f *fakeRoom) Broadcast(msg *protocol.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.perSeat[0] = append(f.perSeat[0], msg)
	f.perSeat[1] = append(f.perSeat[1], msg)
}

func (f *fakeRoom) BroadcastExcept(seat int, msg *protocol.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seat >= 0 && seat < 2 {
		f.perSeat[1-seat] = append(f.perSeat[1-seat], msg)
	}
}

func (f *fakeRoom) SendToSeat(seat int, msg *protocol.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seat >= 0 && seat < 2 {
		f.perSeat[seat] = append(f.perSeat[seat], msg)
	}
}

func (f *fakeRoom) countOfType(seat int, t protocol.MessageType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, msg := range f.perSeat[seat] {
		if msg.Type == t {
			n++
		}
	}
	return n
}

// testConfig 默认用超长计时器，避免测试期间计时器自己触发
func testConfig() Config {
	return Config{
		TurnTimeout:      time.Hour,
		RevealDelay:      time.Hour,
		RematchCountdown: time.Hour,
		TargetScore:      10,
	}
}

func newStartedSession(t *testing.T) (*GameSession, *fakeRoom) {
	t.Helper()

	room := &fakeRoom{}
	gs := NewGameSession(room, testConfig())
	gs.Start()
	t.Cleanup(gs.Stop)
	return gs, room
}

// allCardIDs 收集当前局里所有区域的牌
func allCardIDs(gs *GameSession) map[string]int {
	ids := make(map[string]int)
	for _, c := range gs.deck {
		ids[c.ID()]++
	}
	for _, c := range gs.discardPile {
		ids[c.ID()]++
	}
	for seat := range gs.hands {
		for _, c := range gs.hands[seat] {
			ids[c.ID()]++
		}
	}
	return ids
}

func TestStartRound_DealsAndConservesCards(t *testing.T) {
	t.Parallel()

	gs, room := newStartedSession(t)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	assert.Equal(t, 1, gs.roundID)
	assert.Equal(t, PhaseDraw, gs.phase)
	assert.Len(t, gs.hands[0], handSize)
	assert.Len(t, gs.hands[1], handSize)
	assert.Len(t, gs.discardPile, 1)
	assert.Len(t, gs.deck, 52-2*handSize-1)

	// All 52 cards exist exactly once across deck, pile and hands
	ids := allCardIDs(gs)
	assert.Len(t, ids, 52)
	for id, n := range ids {
		assert.Equal(t, 1, n, "card %s appears %d times", id, n)
	}

	// Both seats received the opening snapshot
	assert.Equal(t, 1, room.countOfType(0, protocol.MsgState))
	assert.Equal(t, 1, room.countOfType(1, protocol.MsgState))
}

func TestDrawThenDiscard_AdvancesTurn(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	gs.mu.Lock()
	first := gs.currentPlayer
	gs.mu.Unlock()

	gs.HandleDrawDeck(first)

	gs.mu.Lock()
	assert.Equal(t, PhaseDiscard, gs.phase)
	assert.Len(t, gs.hands[first], handSize+1)
	cardID := gs.hands[first][0].ID()
	gs.mu.Unlock()

	gs.HandleDiscard(first, cardID)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Equal(t, 1-first, gs.currentPlayer)
	assert.Equal(t, PhaseDraw, gs.phase)
	assert.Len(t, gs.hands[first], handSize)
	assert.Len(t, gs.discardPile, 2)
}

func TestOutOfTurnActionsIgnored(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	gs.mu.Lock()
	other := 1 - gs.currentPlayer
	gs.mu.Unlock()

	gs.HandleDrawDeck(other)
	gs.HandleDrawDiscard(other)
	gs.HandleDiscard(other, "A♠")
	gs.HandleDrawDeck(-1)
	gs.HandleDrawDeck(2)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Len(t, gs.hands[other], handSize)
	assert.Equal(t, PhaseDraw, gs.phase)
}

func TestDiscardRequiresDrawFirst(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	gs.mu.Lock()
	seat := gs.currentPlayer
	cardID := gs.hands[seat][0].ID()
	gs.mu.Unlock()

	// Still in the draw phase: the discard must be dropped
	gs.HandleDiscard(seat, cardID)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Equal(t, seat, gs.currentPlayer)
	assert.Len(t, gs.hands[seat], handSize)
}

func TestDrawDiscard_TakesTopCard(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	gs.mu.Lock()
	seat := gs.currentPlayer
	top := gs.discardPile[len(gs.discardPile)-1]
	gs.mu.Unlock()

	gs.HandleDrawDiscard(seat)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Empty(t, gs.discardPile)
	assert.Equal(t, PhaseDiscard, gs.phase)
	require.Len(t, gs.hands[seat], handSize+1)
	assert.Equal(t, top.ID(), gs.hands[seat][handSize].ID())
}

func TestHandleHandOrder(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	order := []string{"5♠", "6♠", "7♠"}
	gs.HandleHandOrder(0, order)
	gs.HandleHandOrder(2, []string{"A♠"}) // invalid seat
	gs.HandleHandOrder(1, nil)            // nil order keeps the seeded one

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Equal(t, order, gs.handOrders[0])
	assert.Len(t, gs.handOrders[1], handSize)
}

func TestHandleHandOrder_Resubmit(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	gs.mu.Lock()
	order := card.IDs(gs.hands[0])
	gs.mu.Unlock()

	// The same arrangement reported twice must not move the needle
	gs.HandleHandOrder(0, order)
	gs.mu.Lock()
	before := gs.buildState(0, nil)
	gs.mu.Unlock()

	gs.HandleHandOrder(0, order)
	gs.mu.Lock()
	after := gs.buildState(0, nil)
	assert.Equal(t, order, gs.handOrders[0])
	gs.mu.Unlock()

	assert.Equal(t, before.DeadwoodCount, after.DeadwoodCount)
	assert.Equal(t, before.DeadwoodPoints, after.DeadwoodPoints)
}

// ginHand 组一手 11 张牌：三组组牌加 1 张死牌，可以直接 Gin
func ginHand() []card.Card {
	return []card.Card{
		{Suit: card.Spade, Rank: card.RankA}, {Suit: card.Spade, Rank: card.Rank2},
		{Suit: card.Spade, Rank: card.Rank3}, {Suit: card.Spade, Rank: card.Rank4},
		{Suit: card.Heart, Rank: card.Rank9}, {Suit: card.Diamond, Rank: card.Rank9}, {Suit: card.Club, Rank: card.Rank9},
		{Suit: card.Heart, Rank: card.RankJ}, {Suit: card.Heart, Rank: card.RankQ}, {Suit: card.Heart, Rank: card.RankK},
		{Suit: card.Club, Rank: card.Rank5},
	}
}

// deadwoodHand 组一手 10 张全是死牌的牌
func deadwoodHand() []card.Card {
	return []card.Card{
		{Suit: card.Club, Rank: card.RankA}, {Suit: card.Diamond, Rank: card.Rank3},
		{Suit: card.Club, Rank: card.Rank6}, {Suit: card.Diamond, Rank: card.Rank8},
		{Suit: card.Club, Rank: card.Rank10}, {Suit: card.Diamond, Rank: card.RankJ},
		{Suit: card.Club, Rank: card.RankQ}, {Suit: card.Diamond, Rank: card.RankK},
		{Suit: card.Heart, Rank: card.Rank2}, {Suit: card.Diamond, Rank: card.Rank5},
	}
}

// setupGinState 手工布置一个座位 0 已摸牌、随时可宣告 Gin 的局面
func setupGinState(cfg Config) (*GameSession, *fakeRoom) {
	room := &fakeRoom{}
	gs := NewGameSession(room, cfg)

	gs.roundID = 1
	gs.currentPlayer = 0
	gs.phase = PhaseDiscard
	gs.hands[0] = ginHand()
	gs.hands[1] = deadwoodHand()
	gs.handOrders[0] = card.IDs(gs.hands[0])
	gs.handOrders[1] = card.IDs(gs.hands[1])
	gs.deck = card.NewDeck()[:52-len(gs.hands[0])-len(gs.hands[1])]
	return gs, room
}

func TestHandleGin_ScoresLoserDeadwood(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.TargetScore = 100
	gs, room := setupGinState(cfg)
	defer gs.Stop()

	gs.HandleGin(0)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	assert.True(t, gs.roundOver)
	assert.Equal(t, 0, gs.winner)
	assert.Equal(t, WinTypeGin, gs.winType)

	// The loser adds their own deadwood points to their own score:
	// A+3+6+8+10+10+10+10+2+5 = 65
	assert.Equal(t, 65, gs.scores[1])
	assert.Zero(t, gs.scores[0])
	assert.False(t, gs.matchOver)

	assert.Equal(t, 1, room.countOfType(0, protocol.MsgRoundReveal))
	assert.Equal(t, 1, room.countOfType(1, protocol.MsgRoundReveal))
}

func TestHandleGin_RejectedWithTooMuchDeadwood(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	gs, _ := setupGinState(cfg)
	defer gs.Stop()

	// Wreck the declarer's arrangement: everything counts as deadwood
	gs.handOrders[0] = nil
	gs.hands[0] = append(deadwoodHand(), card.Card{Suit: card.Spade, Rank: card.Rank7})

	gs.HandleGin(0)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.False(t, gs.roundOver)
	assert.Zero(t, gs.scores[1])
}

func TestHandleGin_EndsMatchAtTargetScore(t *testing.T) {
	t.Parallel()

	matchOver := make(chan [3]int, 1)

	cfg := testConfig()
	cfg.TargetScore = 10
	cfg.OnMatchOver = func(winnerSeat, loserSeat, loserScore int) {
		matchOver <- [3]int{winnerSeat, loserSeat, loserScore}
	}

	gs, _ := setupGinState(cfg)
	defer gs.Stop()

	gs.HandleGin(0)

	gs.mu.Lock()
	assert.True(t, gs.matchOver)
	assert.Equal(t, 0, gs.matchWinner)
	gs.mu.Unlock()

	select {
	case result := <-matchOver:
		assert.Equal(t, 0, result[0])
		assert.Equal(t, 1, result[1])
		assert.Equal(t, 65, result[2])
	case <-time.After(2 * time.Second):
		t.Fatal("match-over callback never fired")
	}

	// A finished match accepts no more turn actions
	gs.HandleDrawDeck(0)
	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Len(t, gs.hands[0], 11)
}

func TestHandleRematch_BothVotesResetMatch(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RematchCountdown = 20 * time.Millisecond
	gs, _ := setupGinState(cfg)
	defer gs.Stop()

	gs.matchOver = true
	gs.matchWinner = 0
	gs.scores = [2]int{3, 12}

	gs.HandleRematch(0)

	gs.mu.Lock()
	assert.True(t, gs.rematchVotes[0])
	assert.False(t, gs.rematchVotes[1])
	assert.True(t, gs.rematchCountdownEndsAt.IsZero())
	gs.mu.Unlock()

	gs.HandleRematch(1)

	gs.mu.Lock()
	assert.False(t, gs.rematchCountdownEndsAt.IsZero())
	gs.mu.Unlock()

	// After the countdown the match restarts from scratch
	assert.Eventually(t, func() bool {
		gs.mu.Lock()
		defer gs.mu.Unlock()
		return !gs.matchOver && gs.scores == [2]int{} && gs.roundID == 2
	}, 2*time.Second, 5*time.Millisecond)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Equal(t, [2]bool{}, gs.rematchVotes)
	assert.Len(t, gs.hands[0], handSize)
	assert.Len(t, gs.hands[1], handSize)
}

func TestReplenish_ShufflesPileKeepingTop(t *testing.T) {
	t.Parallel()

	room := &fakeRoom{}
	gs := NewGameSession(room, testConfig())
	defer gs.Stop()

	gs.roundID = 1
	gs.currentPlayer = 0
	gs.phase = PhaseDraw
	gs.hands[0] = deadwoodHand()
	gs.hands[1] = ginHand()[:handSize]
	gs.deck = nil
	gs.discardPile = []card.Card{
		{Suit: card.Spade, Rank: card.Rank8},
		{Suit: card.Heart, Rank: card.Rank4},
		{Suit: card.Club, Rank: card.Rank7}, // visible top
	}

	gs.HandleDrawDeck(0)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	// Two buried cards went back to the deck, one was drawn
	assert.Len(t, gs.hands[0], handSize+1)
	assert.Len(t, gs.deck, 1)
	require.Len(t, gs.discardPile, 1)
	assert.Equal(t, "7♣", gs.discardPile[0].ID())

	assert.Positive(t, room.countOfType(0, protocol.MsgDeckReshuffle))
	assert.Positive(t, room.countOfType(1, protocol.MsgDeckReshuffle))
}

func TestReplenish_NeedsTwoDiscards(t *testing.T) {
	t.Parallel()

	room := &fakeRoom{}
	gs := NewGameSession(room, testConfig())
	defer gs.Stop()

	gs.roundID = 1
	gs.currentPlayer = 0
	gs.phase = PhaseDraw
	gs.hands[0] = deadwoodHand()
	gs.deck = nil
	gs.discardPile = []card.Card{{Suit: card.Club, Rank: card.Rank7}}

	gs.HandleDrawDeck(0)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Len(t, gs.hands[0], handSize)
	assert.Equal(t, PhaseDraw, gs.phase)
	assert.Len(t, gs.discardPile, 1)
}

func TestTurnTimeout_ForcedDiscard(t *testing.T) {
	t.Parallel()

	room := &fakeRoom{}
	cfg := testConfig()
	cfg.TurnTimeout = 200 * time.Millisecond
	gs := NewGameSession(room, cfg)
	defer gs.Stop()
	gs.Start()

	gs.mu.Lock()
	seat := gs.currentPlayer
	gs.mu.Unlock()

	// Draw and then stall through the deadline
	gs.HandleDrawDeck(seat)

	assert.Eventually(t, func() bool {
		gs.mu.Lock()
		defer gs.mu.Unlock()
		return gs.currentPlayer == 1-seat
	}, 2*time.Second, 5*time.Millisecond)

	gs.mu.Lock()
	assert.Len(t, gs.hands[seat], handSize)
	assert.Equal(t, PhaseDraw, gs.phase)
	gs.mu.Unlock()

	// Only the timed-out seat learns which card was thrown
	assert.Equal(t, 1, room.countOfType(seat, protocol.MsgTimeoutDiscard))
	assert.Equal(t, 1, room.countOfType(1-seat, protocol.MsgTimeoutDiscard))
}

func TestTurnTimeout_PassWithoutDraw(t *testing.T) {
	t.Parallel()

	room := &fakeRoom{}
	cfg := testConfig()
	cfg.TurnTimeout = 40 * time.Millisecond
	gs := NewGameSession(room, cfg)
	defer gs.Stop()
	gs.Start()

	gs.mu.Lock()
	seat := gs.currentPlayer
	gs.mu.Unlock()

	assert.Eventually(t, func() bool {
		gs.mu.Lock()
		defer gs.mu.Unlock()
		return gs.currentPlayer == 1-seat
	}, 2*time.Second, 5*time.Millisecond)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	// No card left the hand and the pile only holds the opening upcard
	assert.Len(t, gs.hands[seat], handSize)
	assert.Len(t, gs.discardPile, 1)
	assert.Positive(t, room.countOfType(1-seat, protocol.MsgTimeoutPass))
}

func TestTurnTimeout_StaleCallbackSameRound(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	gs.mu.Lock()
	first := gs.currentPlayer
	armedRound, armedSeq := gs.roundID, gs.turnSeq
	gs.mu.Unlock()

	// A normal draw + discard hands the turn to the opponent
	gs.HandleDrawDeck(first)
	gs.mu.Lock()
	cardID := gs.hands[first][0].ID()
	gs.mu.Unlock()
	gs.HandleDiscard(first, cardID)

	// A timer callback armed before the discard may still land after it
	// (AfterFunc races Stop); it must not steal the opponent's fresh turn
	gs.handleTurnTimeout(armedRound, armedSeq)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Equal(t, 1-first, gs.currentPlayer)
	assert.Equal(t, PhaseDraw, gs.phase)
	assert.Len(t, gs.discardPile, 2)
	assert.Len(t, gs.hands[1-first], handSize)
}

func TestStop_CancelsTimers(t *testing.T) {
	t.Parallel()

	room := &fakeRoom{}
	cfg := testConfig()
	cfg.TurnTimeout = 150 * time.Millisecond
	gs := NewGameSession(room, cfg)
	gs.Start()

	gs.mu.Lock()
	seat := gs.currentPlayer
	gs.mu.Unlock()

	gs.Stop()
	time.Sleep(400 * time.Millisecond)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.True(t, gs.stopped)
	assert.Equal(t, seat, gs.currentPlayer, "stopped session must not advance turns")
	assert.Nil(t, gs.turnTimer)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	gs, _ := newStartedSession(t)

	snap := gs.Snapshot()
	assert.Equal(t, 1, snap.RoundID)
	assert.Equal(t, string(PhaseDraw), snap.Phase)
	assert.Equal(t, 52-2*handSize-1, snap.DeckCount)
	assert.False(t, snap.MatchOver)
}
