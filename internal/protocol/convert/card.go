package convert

import (
	"github.com/ellisandco/gin-rummy/internal/game/card"
	"github.com/ellisandco/gin-rummy/internal/game/rule"
	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// CardToInfo 内部牌结构 → 线格式
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		Rank: c.Rank.String(),
		Suit: c.Suit.String(),
	}
}

// CardsToInfos 批量转换，nil 输入返回空切片（避免 JSON null）
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// TopCard 返回牌堆顶的线格式表示，空堆为 nil
func TopCard(pile []card.Card) *protocol.CardInfo {
	if len(pile) == 0 {
		return nil
	}
	info := CardToInfo(pile[len(pile)-1])
	return &info
}

// LayoutToInfo 组牌布局 → 线格式
func LayoutToInfo(l rule.Layout) protocol.LayoutInfo {
	groups := make([][]protocol.CardInfo, len(l.MeldGroups))
	for i, g := range l.MeldGroups {
		groups[i] = CardsToInfos(g)
	}
	return protocol.LayoutInfo{
		MeldGroups:     groups,
		Deadwood:       CardsToInfos(l.Deadwood),
		DeadwoodPoints: l.DeadwoodPoints,
		DeadwoodCount:  l.DeadwoodCount,
	}
}
