// internal/records/recorder.go
package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mamathon/triviawager/internal/database"
	"github.com/mamathon/triviawager/internal/lobby"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// TimestampLayout is the match document's timestamp format (UTC).
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrInvalidGame     = errors.New("invalid game data")
	ErrNotFound        = errors.New("game record not found")
	ErrBlobUnavailable = errors.New("game data could not be read from the ledger")

	validate = validator.New()
)

// Recorder writes finished matches to the ledger and indexes them in the
// database.
type Recorder struct {
	matches   MatchStore
	blobs     BlobStore
	namespace string
	timeout   time.Duration
}

func NewRecorder(matches MatchStore, blobs BlobStore, namespace string) *Recorder {
	return &Recorder{matches: matches, blobs: blobs, namespace: namespace, timeout: time.Minute}
}

// BuildGameData assembles and validates the ledger document for a match.
func BuildGameData(id int64, res lobby.GameResult, at time.Time) (models.GameData, error) {
	data := models.GameData{
		GameID:    id,
		Players:   lo.Map(res.Players, func(w string, _ int) models.GamePlayer { return models.GamePlayer{Wallet: w} }),
		BetAmount: res.Bet,
		Scores:    res.Scores,
		Winner:    res.Winner,
		Timestamp: at.UTC().Format(TimestampLayout),
		Questions: res.Questions,
	}
	if err := validate.Struct(data); err != nil {
		return data, fmt.Errorf("%w: %v", ErrInvalidGame, err)
	}
	for _, w := range res.Players {
		if _, ok := data.Scores[w]; !ok {
			return data, fmt.Errorf("%w: no score for %s", ErrInvalidGame, w)
		}
	}
	if len(data.Scores) != len(res.Players) {
		return data, fmt.Errorf("%w: scores do not match players", ErrInvalidGame)
	}
	if !slices.Contains(res.Players, res.Winner) {
		return data, fmt.Errorf("%w: winner %s is not a player", ErrInvalidGame, res.Winner)
	}
	return data, nil
}

// RecordMatch submits the match document and stores its pointer row. Aborted
// games and games without a winner are skipped and return nil, nil.
func (r *Recorder) RecordMatch(ctx context.Context, res lobby.GameResult) (*models.MatchRecord, error) {
	if res.Aborted || res.Winner == "" {
		return nil, nil
	}

	id, err := r.matches.ReserveMatchID(ctx)
	if err != nil {
		return nil, err
	}
	data, err := BuildGameData(id, res, res.EndedAt)
	if err != nil {
		return nil, err
	}

	height, err := r.blobs.SubmitBlob(ctx, r.namespace, data)
	if err != nil {
		return nil, fmt.Errorf("submitting game %d: %w", id, err)
	}

	rec := models.MatchRecord{
		ID:            id,
		Player1Wallet: data.Players[0].Wallet,
		Player2Wallet: data.Players[1].Wallet,
		BlockHeight:   height,
		Namespace:     r.namespace,
	}
	if err := r.matches.InsertMatchRecord(ctx, rec); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"lobby": res.LobbyID, "game_id": id, "height": height}).Info("match recorded")
	return &rec, nil
}

// OnGameEnd is a lobby.Hooks callback. Failures are logged.
func (r *Recorder) OnGameEnd(res lobby.GameResult) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.RecordMatch(ctx, res); err != nil {
		log.WithError(err).WithField("lobby", res.LobbyID).Error("failed to record match")
	}
}

// FetchMatch loads a recorded match document by id.
func (r *Recorder) FetchMatch(ctx context.Context, id int64) (*models.GameData, error) {
	rec, err := r.matches.GetMatchRecord(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var data models.GameData
	if err := r.blobs.GetBlob(ctx, rec.BlockHeight, rec.Namespace, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobUnavailable, err)
	}
	return &data, nil
}

// PlayerHistory lists a wallet's matches, newest first.
func (r *Recorder) PlayerHistory(ctx context.Context, wallet string) ([]models.MatchSummary, error) {
	matches, err := r.matches.GetPlayerMatches(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []models.MatchSummary{}
	}
	return matches, nil
}
