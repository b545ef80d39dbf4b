// Package rule 实现 Gin Rummy 的组牌与死牌判定。
//
// 组牌检测刻意采用与浏览器客户端一致的单遍贪心扫描：
// 按玩家自己摆放的顺序从左到右找连续的顺子/刻子，不做全局最优划分，
// 也绝不替玩家重新排序。服务端与客户端必须对同一摆放得出同一结果。
package rule

import (
	"github.com/ellisandco/gin-rummy/internal/game/card"
)

// Layout 一名玩家的组牌结果
type Layout struct {
	MeldGroups     [][]card.Card // 已成组的顺子/刻子
	Deadwood       []card.Card   // 未成组的死牌
	DeadwoodPoints int           // 死牌总分
	DeadwoodCount  int           // 死牌张数
}

// IsValidRun 顺子：3 张以上同花色、按当前顺序点数严格递增 1
func IsValidRun(block []card.Card) bool {
	if len(block) < 3 {
		return false
	}
	suit := block[0].Suit
	for _, c := range block {
		if c.Suit != suit {
			return false
		}
	}
	for i := 1; i < len(block); i++ {
		if block[i].Rank != block[i-1].Rank+1 {
			return false
		}
	}
	return true
}

// IsValidSet 刻子：3-4 张同点数、花色互不相同
func IsValidSet(block []card.Card) bool {
	if len(block) < 3 {
		return false
	}
	rank := block[0].Rank
	suits := make(map[card.Suit]bool, len(block))
	for _, c := range block {
		if c.Rank != rank {
			return false
		}
		suits[c.Suit] = true
	}
	return len(suits) == len(block)
}

// DetectMeldGroups 按摆放顺序从左到右贪心找组：
// 每个位置先找从这里起的最长顺子，再试 4 张刻子、3 张刻子，
// 取更长者（同长保留先找到的顺子）；找不到则该牌为死牌、指针前移一位。
func DetectMeldGroups(ordered []card.Card) [][]card.Card {
	var groups [][]card.Card
	i := 0

	for i < len(ordered) {
		var best []card.Card

		// 从 i 起的最长顺子
		for j := i + 2; j < len(ordered); j++ {
			block := ordered[i : j+1]
			if IsValidRun(block) && len(block) > len(best) {
				best = block
			}
		}

		// 从 i 起的刻子，4 张优先于 3 张
		for _, n := range []int{4, 3} {
			if i+n <= len(ordered) {
				block := ordered[i : i+n]
				if IsValidSet(block) && len(block) > len(best) {
					best = block
				}
			}
		}

		if best != nil {
			group := make([]card.Card, len(best))
			copy(group, best)
			groups = append(groups, group)
			i += len(best)
		} else {
			i++
		}
	}

	return groups
}

// DeadwoodFromOrder 依据玩家上报的摆放顺序计算组牌布局。
// orderIDs 是不可信的客户端输入：未知 id 被忽略，
// 手牌中未出现在顺序里的牌追加在末尾；没有顺序则整手都算死牌。
func DeadwoodFromOrder(hand []card.Card, orderIDs []string) Layout {
	if len(orderIDs) == 0 {
		points := 0
		for _, c := range hand {
			points += c.DeadwoodValue()
		}
		return Layout{
			Deadwood:       append([]card.Card(nil), hand...),
			DeadwoodPoints: points,
			DeadwoodCount:  len(hand),
		}
	}

	byID := make(map[string]card.Card, len(hand))
	for _, c := range hand {
		byID[c.ID()] = c
	}

	ordered := make([]card.Card, 0, len(hand))
	seen := make(map[string]bool, len(hand))
	for _, id := range orderIDs {
		if c, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, c)
			seen[id] = true
		}
	}
	for _, c := range hand {
		if !seen[c.ID()] {
			ordered = append(ordered, c)
		}
	}

	groups := DetectMeldGroups(ordered)
	inMeld := make(map[string]bool)
	for _, g := range groups {
		for _, c := range g {
			inMeld[c.ID()] = true
		}
	}

	var deadwood []card.Card
	points := 0
	for _, c := range ordered {
		if !inMeld[c.ID()] {
			deadwood = append(deadwood, c)
			points += c.DeadwoodValue()
		}
	}

	return Layout{
		MeldGroups:     groups,
		Deadwood:       deadwood,
		DeadwoodPoints: points,
		DeadwoodCount:  len(deadwood),
	}
}
