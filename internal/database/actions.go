// internal/database/actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mamathon/triviawager/internal/models"
)

// sessionStatus maps terminal action types onto lobby_sessions.status.
var sessionStatus = map[string]string{
	"game_over":    "completed",
	"game_aborted": "aborted",
}

// InsertActions persists a batch of lobby actions in one transaction, upserting
// each lobby's session row and finalizing it on a terminal action.
func InsertActions(ctx context.Context, records []models.ActionRecord) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %s/%d: %w", rec.LobbyID, rec.ActionIndex, err)
			}
		}
		return nil
	})
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec models.ActionRecord) error {
	at := time.UnixMilli(rec.Timestamp)
	upsertSession := `
		INSERT INTO lobby_sessions (lobby_id, status, started_at, last_action_at)
		VALUES ($1, 'in_progress', $2, $2)
		ON CONFLICT (lobby_id)
		DO UPDATE SET last_action_at = GREATEST(lobby_sessions.last_action_at, EXCLUDED.last_action_at)
	`
	if _, err := tx.Exec(ctx, upsertSession, rec.LobbyID, at); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	insertAction := `
		INSERT INTO match_actions (lobby_id, action_index, actor, action_type, action_payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lobby_id, action_index) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertAction, rec.LobbyID, rec.ActionIndex, rec.Actor, rec.ActionType, payload, at); err != nil {
		return err
	}

	if status, ok := sessionStatus[rec.ActionType]; ok {
		finalize := `
			UPDATE lobby_sessions
			SET status = $2, ended_at = $3
			WHERE lobby_id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalize, rec.LobbyID, status, at); err != nil {
			return err
		}
	}
	return nil
}

// MarkAbandoned closes a session that stopped producing actions. It reports
// whether a row changed.
func MarkAbandoned(ctx context.Context, lobbyID uuid.UUID) (bool, error) {
	q := `
		UPDATE lobby_sessions
		SET status = 'abandoned', ended_at = NOW()
		WHERE lobby_id = $1 AND status = 'in_progress'
	`
	tag, err := DB.Exec(ctx, q, lobbyID)
	if err != nil {
		return false, fmt.Errorf("mark lobby %s abandoned: %w", lobbyID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ActionStore exposes the action queries as a value for injection.
type ActionStore struct{}

func (ActionStore) InsertActions(ctx context.Context, records []models.ActionRecord) error {
	return InsertActions(ctx, records)
}

func (ActionStore) MarkAbandoned(ctx context.Context, lobbyID uuid.UUID) (bool, error) {
	return MarkAbandoned(ctx, lobbyID)
}
