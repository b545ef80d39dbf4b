package card

import (
	"math/rand/v2"
	"sort"
)

// Suit 定义花色
type Suit int

// Rank 定义点数
type Rank int

const (
	Spade   Suit = iota // 黑桃
	Heart               // 红心
	Diamond             // 方块
	Club                // 梅花
)

// suitSymbols 花色符号映射表（与浏览器客户端的线格式一致）
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Diamond: "♦",
	Club:    "♣",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

const (
	RankA Rank = iota + 1
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
)

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	RankA:  "A",
	Rank2:  "2",
	Rank3:  "3",
	Rank4:  "4",
	Rank5:  "5",
	Rank6:  "6",
	Rank7:  "7",
	Rank8:  "8",
	Rank9:  "9",
	Rank10: "10",
	RankJ:  "J",
	RankQ:  "Q",
	RankK:  "K",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return ""
}

// Card 定义一张牌
type Card struct {
	Suit Suit
	Rank Rank
}

// ID 返回牌的稳定标识 rank+suit（如 "10♥"），
// 客户端的摆牌顺序与弃牌请求都以它为键。
func (c Card) ID() string {
	return c.Rank.String() + c.Suit.String()
}

// DeadwoodValue 死牌分值：花牌 10 分，A 1 分，其余按点数
func (c Card) DeadwoodValue() int {
	switch {
	case c.Rank >= RankJ:
		return 10
	default:
		return int(c.Rank)
	}
}

// Deck 定义一副牌
type Deck []Card

// NewDeck 生成完整的 52 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, 52)
	for s := Spade; s <= Club; s++ {
		for r := RankA; r <= RankK; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// SortForDeal 发牌后的初始排序：点数升序、同点数按花色符号，
// 仅为了首个快照与发牌动画一致，之后的顺序完全由玩家摆放决定。
func SortForDeal(hand []Card) []Card {
	sorted := make([]Card, len(hand))
	copy(sorted, hand)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].Suit.String() < sorted[j].Suit.String()
	})
	return sorted
}

// IDs 返回一组牌的标识序列
func IDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID()
	}
	return ids
}
