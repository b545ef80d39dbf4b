package room

import (
	"github.com/ellisandco/gin-rummy/internal/server/storage"
)

// roomStateNames 房间状态的序列化名称
var roomStateNames = map[RoomState]string{
	RoomStateWaiting: "waiting",
	RoomStatePlaying: "playing",
	RoomStateEnded:   "ended",
}

// ToRoomData 将 Room 转换为可序列化的 RoomData
func (r *Room) ToRoomData() *storage.RoomData {
	r.mu.RLock()
	game := r.Game
	data := &storage.RoomData{
		Code:          r.Code,
		State:         roomStateNames[r.State],
		PlayersNeeded: r.PlayersNeeded,
		TargetScore:   r.TargetScore,
		PlayerIDs:     make([]string, 0, len(r.Clients)),
		CreatedAt:     r.CreatedAt.Unix(),
	}
	for _, c := range r.Clients {
		data.PlayerIDs = append(data.PlayerIDs, c.GetID())
	}
	r.mu.RUnlock()

	// Snapshot 自己取 session 锁，放在房间锁之外调用
	if game != nil {
		snap := game.Snapshot()
		data.Game = &storage.GameData{
			RoundID:       snap.RoundID,
			Phase:         snap.Phase,
			CurrentPlayer: snap.CurrentPlayer,
			DeckCount:     snap.DeckCount,
			Scores:        snap.Scores,
			MatchOver:     snap.MatchOver,
		}
	}

	return data
}
