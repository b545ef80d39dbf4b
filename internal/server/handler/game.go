package handler

import (
	"github.com/ellisandco/gin-rummy/internal/game/session"
	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/types"
)

// 对局消息全部静默处理：没有房间、没有对局或动作非法时直接丢弃，
// 与会话层的门禁语义保持一致（过期消息不是错误）。

// gameSession 取该客户端所在房间的对局，任一环节缺失返回 nil
func (h *Handler) gameSession(client types.ClientInterface) *session.GameSession {
	room := h.roomManager.GetRoomByClient(client)
	if room == nil {
		return nil
	}
	return room.GetGame()
}

// handleDrawDeck 处理从牌堆摸牌
func (h *Handler) handleDrawDeck(client types.ClientInterface) {
	if gs := h.gameSession(client); gs != nil {
		gs.HandleDrawDeck(client.GetSeat())
	}
}

// handleDrawDiscard 处理从弃牌堆摸牌
func (h *Handler) handleDrawDiscard(client types.ClientInterface) {
	if gs := h.gameSession(client); gs != nil {
		gs.HandleDrawDiscard(client.GetSeat())
	}
}

// handleDiscard 处理弃牌
func (h *Handler) handleDiscard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.DiscardPayload](msg)
	if err != nil {
		return
	}

	cardID := payload.CardID
	// 旧版客户端直接传牌对象而非 cardId
	if cardID == "" && payload.Card != nil {
		cardID = payload.Card.Rank + payload.Card.Suit
	}

	if gs := h.gameSession(client); gs != nil {
		gs.HandleDiscard(client.GetSeat(), cardID)
	}
}

// handleGin 处理 Gin 宣告
func (h *Handler) handleGin(client types.ClientInterface) {
	if gs := h.gameSession(client); gs != nil {
		gs.HandleGin(client.GetSeat())
	}
}

// handleRematch 处理重赛投票
func (h *Handler) handleRematch(client types.ClientInterface) {
	if gs := h.gameSession(client); gs != nil {
		gs.HandleRematch(client.GetSeat())
	}
}

// handleHandOrder 处理手牌摆放顺序上报
func (h *Handler) handleHandOrder(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.HandOrderPayload](msg)
	if err != nil {
		return
	}

	if gs := h.gameSession(client); gs != nil {
		gs.HandleHandOrder(client.GetSeat(), payload.Order)
	}
}
