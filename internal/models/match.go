// internal/models/match.go
package models

// MatchRecord is a row in the game_records table. The full match data lives in
// a ledger blob addressed by BlockHeight and Namespace.
type MatchRecord struct {
	ID            int64  `json:"game_id"`
	Player1Wallet string `json:"player1"`
	Player2Wallet string `json:"player2"`
	BlockHeight   uint64 `json:"block_height"`
	Namespace     string `json:"namespace"`
}

// MatchSummary is a MatchRecord as seen from one player's history.
type MatchSummary struct {
	MatchRecord
	IsPlayer1 bool `json:"is_player1"`
}

// GamePlayer identifies a participant inside GameData.
type GamePlayer struct {
	Wallet string `json:"wallet" validate:"required"`
}

// GameData is the document submitted to the ledger when a match ends.
type GameData struct {
	GameID    int64          `json:"game_id"`
	Players   []GamePlayer   `json:"players" validate:"min=2,dive"`
	BetAmount int            `json:"bet_amount" validate:"gte=0"`
	Scores    map[string]int `json:"scores" validate:"required"`
	Winner    string         `json:"winner" validate:"required"`
	Timestamp string         `json:"timestamp" validate:"required"`
	Questions []QuestionItem `json:"questions" validate:"min=1"`
}
