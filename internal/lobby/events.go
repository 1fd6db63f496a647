// internal/lobby/events.go
package lobby

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a server-to-client event.
type EventType string

const (
	EventLobbyUpdate EventType = "lobbyUpdate"
	EventStartGame   EventType = "startGame"
	EventNewRound    EventType = "newRound"
	EventRoundResult EventType = "roundResult"
	EventGameOver    EventType = "gameOver"
	EventError       EventType = "error"
)

// Event is the envelope pushed onto every connection's OutChan.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

type StartGamePayload struct {
	LobbyID uuid.UUID `json:"lobbyId"`
}

type NewRoundPayload struct {
	Round         int            `json:"round"`
	Question      string         `json:"question"`
	Players       []string       `json:"players"`
	Scores        map[string]int `json:"scores"`
	TimerDuration int            `json:"timerDuration"` // seconds
}

// RoundResultPayload carries a nil Winner when nobody guessed.
type RoundResultPayload struct {
	Round         int            `json:"round"`
	CorrectAnswer int            `json:"correctAnswer"`
	Winner        *string        `json:"winner"`
	Scores        map[string]int `json:"scores"`
}

type GameOverPayload struct {
	Winner  *string        `json:"winner"`
	Scores  map[string]int `json:"scores"`
	Credits map[string]int `json:"credits"`
	Aborted bool           `json:"aborted,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// PlayerSnapshot is one member's row in a Snapshot.
type PlayerSnapshot struct {
	Credits   int  `json:"credits"`
	Ready     bool `json:"ready"`
	Score     int  `json:"score"`
	Connected bool `json:"connected"`
}

// Snapshot is the full membership/ready/score view sent as lobbyUpdate and
// returned by the HTTP lobby routes.
type Snapshot struct {
	ID        uuid.UUID                 `json:"id"`
	Owner     string                    `json:"owner"`
	Topic     string                    `json:"topic"`
	Bet       int                       `json:"bet"`
	Status    Status                    `json:"status"`
	Round     int                       `json:"round"`
	Players   map[string]PlayerSnapshot `json:"players"`
	CreatedAt time.Time                 `json:"createdAt"`
}
