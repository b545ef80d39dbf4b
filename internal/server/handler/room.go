package handler

import (
	"errors"

	"github.com/ellisandco/gin-rummy/internal/apperrors"
	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
	"github.com/ellisandco/gin-rummy/internal/types"
)

// sendRoomError 房间结构性错误统一走 join_error 通道
func sendRoomError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewJoinError(gameErr.Message))
		return
	}
	client.SendMessage(codec.NewJoinError(err.Error()))
}

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "Maintenance mode: room creation is disabled."))
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 如果已在房间中，先离开
	if client.GetRoom() != "" {
		h.roomManager.RemoveClient(client)
	}

	room, err := h.roomManager.CreateRoom(client, payload.Code, payload.PlayersNeeded, payload.PointsTarget)
	if err != nil {
		sendRoomError(client, err)
		return
	}

	// 建房只回 init 和 room_update，join_ok 留给后续加入者
	client.SendMessage(codec.MustNewMessage(protocol.MsgInit, protocol.InitPayload{PlayerID: client.GetSeat()}))
	room.SendRoomUpdate()
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "Maintenance mode: joining is disabled."))
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 如果已在房间中，先离开
	if client.GetRoom() != "" {
		h.roomManager.RemoveClient(client)
	}

	room, err := h.roomManager.JoinRoom(client, payload.Code)
	if err != nil {
		sendRoomError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgInit, protocol.InitPayload{PlayerID: client.GetSeat()}))
	client.SendMessage(codec.MustNewMessage(protocol.MsgJoinOK, protocol.JoinOKPayload{Code: room.Code}))
}

// handleStartGame 处理房主开局
func (h *Handler) handleStartGame(client types.ClientInterface) {
	if err := h.roomManager.StartGame(client); err != nil {
		sendRoomError(client, err)
	}
}
