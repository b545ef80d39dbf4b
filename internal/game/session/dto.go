package session

// Snapshot 对局的只读摘要，供房间存储与监控使用
type Snapshot struct {
	RoundID       int    `json:"round_id"`
	Phase         string `json:"phase"`
	CurrentPlayer int    `json:"current_player"`
	DeckCount     int    `json:"deck_count"`
	DiscardCount  int    `json:"discard_count"`
	Scores        [2]int `json:"scores"`
	TargetScore   int    `json:"target_score"`
	RoundOver     bool   `json:"round_over"`
	MatchOver     bool   `json:"match_over"`
	MatchWinner   int    `json:"match_winner"` // -1 表示未产生
}

// Snapshot 返回当前对局摘要
func (gs *GameSession) Snapshot() Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	return Snapshot{
		RoundID:       gs.roundID,
		Phase:         string(gs.phase),
		CurrentPlayer: gs.currentPlayer,
		DeckCount:     len(gs.deck),
		DiscardCount:  len(gs.discardPile),
		Scores:        gs.scores,
		TargetScore:   gs.targetScore,
		RoundOver:     gs.roundOver,
		MatchOver:     gs.matchOver,
		MatchWinner:   gs.matchWinner,
	}
}
