// internal/database/match.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mamathon/triviawager/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ReserveMatchID draws the next game_records id so the ledger document and the
// row agree on it.
func ReserveMatchID(ctx context.Context) (int64, error) {
	var id int64
	q := `SELECT nextval(pg_get_serial_sequence('game_records', 'id'))`
	if err := DB.QueryRow(ctx, q).Scan(&id); err != nil {
		return 0, fmt.Errorf("reserve match id: %w", err)
	}
	return id, nil
}

// InsertMatchRecord stores the pointer to a match's ledger blob.
func InsertMatchRecord(ctx context.Context, rec models.MatchRecord) error {
	q := `
		INSERT INTO game_records (id, player1_wallet, player2_wallet, block_height, namespace)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := DB.Exec(ctx, q, rec.ID, rec.Player1Wallet, rec.Player2Wallet, rec.BlockHeight, rec.Namespace); err != nil {
		return fmt.Errorf("insert match record: %w", err)
	}
	return nil
}

// GetMatchRecord loads one row by id.
func GetMatchRecord(ctx context.Context, id int64) (*models.MatchRecord, error) {
	q := `
		SELECT id, player1_wallet, player2_wallet, block_height, namespace
		FROM game_records
		WHERE id = $1
	`
	var rec models.MatchRecord
	err := DB.QueryRow(ctx, q, id).Scan(&rec.ID, &rec.Player1Wallet, &rec.Player2Wallet, &rec.BlockHeight, &rec.Namespace)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: game record %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get match record: %w", err)
	}
	return &rec, nil
}

// GetPlayerMatches lists every record involving wallet, newest first.
func GetPlayerMatches(ctx context.Context, wallet string) ([]models.MatchSummary, error) {
	q := `
		SELECT id, player1_wallet, player2_wallet, block_height, namespace
		FROM game_records
		WHERE player1_wallet = $1 OR player2_wallet = $1
		ORDER BY id DESC
	`
	rows, err := DB.Query(ctx, q, wallet)
	if err != nil {
		return nil, fmt.Errorf("query player matches: %w", err)
	}
	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.MatchSummary, error) {
		var m models.MatchSummary
		err := row.Scan(&m.ID, &m.Player1Wallet, &m.Player2Wallet, &m.BlockHeight, &m.Namespace)
		m.IsPlayer1 = m.Player1Wallet == wallet
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan player matches: %w", err)
	}
	return matches, nil
}

// MatchStore exposes the game_records queries as a value for injection.
type MatchStore struct{}

func (MatchStore) ReserveMatchID(ctx context.Context) (int64, error) { return ReserveMatchID(ctx) }

func (MatchStore) InsertMatchRecord(ctx context.Context, rec models.MatchRecord) error {
	return InsertMatchRecord(ctx, rec)
}

func (MatchStore) GetMatchRecord(ctx context.Context, id int64) (*models.MatchRecord, error) {
	return GetMatchRecord(ctx, id)
}

func (MatchStore) GetPlayerMatches(ctx context.Context, wallet string) ([]models.MatchSummary, error) {
	return GetPlayerMatches(ctx, wallet)
}
