package models

import "github.com/google/uuid"

// ActionRecord is a single lobby state transition queued for the historian.
type ActionRecord struct {
	LobbyID       uuid.UUID              `json:"lobby_id"`
	ActionIndex   int                    `json:"action_index"`
	Actor         string                 `json:"actor"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}
