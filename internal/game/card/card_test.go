package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	require.Len(t, deck, 52)

	// Every card must be unique
	seen := make(map[string]bool, 52)
	for _, c := range deck {
		id := c.ID()
		assert.False(t, seen[id], "duplicate card %s", id)
		seen[id] = true
	}

	// 13 ranks per suit
	perSuit := make(map[Suit]int)
	for _, c := range deck {
		perSuit[c.Suit]++
	}
	for s := Spade; s <= Club; s++ {
		assert.Equal(t, 13, perSuit[s])
	}
}

func TestCardID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		card Card
		want string
	}{
		{Card{Suit: Spade, Rank: RankA}, "A♠"},
		{Card{Suit: Heart, Rank: Rank10}, "10♥"},
		{Card{Suit: Diamond, Rank: RankQ}, "Q♦"},
		{Card{Suit: Club, Rank: RankK}, "K♣"},
		{Card{Suit: Heart, Rank: Rank2}, "2♥"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.card.ID())
	}
}

func TestDeadwoodValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Card{Suit: Spade, Rank: RankA}.DeadwoodValue())
	assert.Equal(t, 9, Card{Suit: Heart, Rank: Rank9}.DeadwoodValue())
	assert.Equal(t, 10, Card{Suit: Club, Rank: Rank10}.DeadwoodValue())

	// Face cards all count 10
	for _, r := range []Rank{RankJ, RankQ, RankK} {
		assert.Equal(t, 10, Card{Suit: Diamond, Rank: r}.DeadwoodValue())
	}
}

func TestShuffleKeepsAllCards(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	deck.Shuffle()
	require.Len(t, deck, 52)

	seen := make(map[string]bool, 52)
	for _, c := range deck {
		seen[c.ID()] = true
	}
	assert.Len(t, seen, 52)
}

func TestSortForDeal(t *testing.T) {
	t.Parallel()

	hand := []Card{
		{Suit: Club, Rank: RankK},
		{Suit: Spade, Rank: Rank3},
		{Suit: Heart, Rank: RankA},
		{Suit: Spade, Rank: RankA},
	}

	sorted := SortForDeal(hand)

	// Original slice untouched
	assert.Equal(t, RankK, hand[0].Rank)

	// Ascending by rank, ties broken by suit symbol
	require.Len(t, sorted, 4)
	assert.Equal(t, RankA, sorted[0].Rank)
	assert.Equal(t, RankA, sorted[1].Rank)
	assert.Equal(t, Rank3, sorted[2].Rank)
	assert.Equal(t, RankK, sorted[3].Rank)
}

func TestIDs(t *testing.T) {
	t.Parallel()

	cards := []Card{
		{Suit: Spade, Rank: Rank5},
		{Suit: Heart, Rank: RankJ},
	}
	assert.Equal(t, []string{"5♠", "J♥"}, IDs(cards))
	assert.Empty(t, IDs(nil))
}
