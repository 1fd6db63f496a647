package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS game_records (
		id SERIAL PRIMARY KEY,
		player1_wallet TEXT NOT NULL,
		player2_wallet TEXT NOT NULL,
		block_height BIGINT NOT NULL,
		namespace TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS game_records_player1_idx ON game_records (player1_wallet)`,
	`CREATE INDEX IF NOT EXISTS game_records_player2_idx ON game_records (player2_wallet)`,
	`CREATE TABLE IF NOT EXISTS lobby_sessions (
		lobby_id UUID PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'in_progress',
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_action_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ended_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS match_actions (
		lobby_id UUID NOT NULL REFERENCES lobby_sessions (lobby_id) ON DELETE CASCADE,
		action_index INTEGER NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		action_type TEXT NOT NULL,
		action_payload JSONB,
		recorded_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (lobby_id, action_index)
	)`,
}

// EnsureSchema creates the service's tables when they are missing.
func EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
