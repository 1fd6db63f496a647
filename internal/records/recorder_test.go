// internal/records/recorder_test.go
package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mamathon/triviawager/internal/database"
	"github.com/mamathon/triviawager/internal/lobby"
	"github.com/mamathon/triviawager/internal/mocks"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func finishedGame() lobby.GameResult {
	return lobby.GameResult{
		LobbyID:   uuid.New(),
		Topic:     "space",
		Bet:       50,
		Players:   []string{"celestia1alice", "celestia1bob"},
		Winner:    "celestia1alice",
		Scores:    map[string]int{"celestia1alice": 3, "celestia1bob": 1},
		Questions: []models.QuestionItem{{Question: "Moons of Mars?", Answer: 2}},
		EndedAt:   time.Date(2025, 3, 1, 12, 30, 5, 0, time.UTC),
	}
}

func TestBuildGameData(t *testing.T) {
	data, err := BuildGameData(7, finishedGame(), time.Date(2025, 3, 1, 12, 30, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(7), data.GameID)
	assert.Equal(t, "2025-03-01 12:30:05", data.Timestamp)
	assert.Equal(t, []models.GamePlayer{{Wallet: "celestia1alice"}, {Wallet: "celestia1bob"}}, data.Players)
	assert.Equal(t, 50, data.BetAmount)
}

func TestBuildGameDataRejects(t *testing.T) {
	cases := map[string]func(*lobby.GameResult){
		"single player":      func(r *lobby.GameResult) { r.Players = r.Players[:1] },
		"negative bet":       func(r *lobby.GameResult) { r.Bet = -1 },
		"missing score":      func(r *lobby.GameResult) { delete(r.Scores, "celestia1bob") },
		"outsider winner":    func(r *lobby.GameResult) { r.Winner = "celestia1mallory" },
		"no questions":       func(r *lobby.GameResult) { r.Questions = nil },
		"extra score":        func(r *lobby.GameResult) { r.Scores["celestia1carol"] = 0 },
		"empty player entry": func(r *lobby.GameResult) { r.Players = []string{"celestia1alice", ""} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			res := finishedGame()
			mutate(&res)
			_, err := BuildGameData(1, res, time.Now())
			assert.ErrorIs(t, err, ErrInvalidGame)
		})
	}
}

func TestRecordMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	matches := mocks.NewMockMatchStore(ctrl)
	blobs := mocks.NewMockBlobStore(ctrl)
	rec := NewRecorder(matches, blobs, "trivia")

	matches.EXPECT().ReserveMatchID(gomock.Any()).Return(int64(11), nil)
	blobs.EXPECT().SubmitBlob(gomock.Any(), "trivia", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, v any) (uint64, error) {
			data := v.(models.GameData)
			assert.Equal(t, int64(11), data.GameID)
			assert.Equal(t, "celestia1alice", data.Winner)
			return 4242, nil
		})
	matches.EXPECT().InsertMatchRecord(gomock.Any(), models.MatchRecord{
		ID:            11,
		Player1Wallet: "celestia1alice",
		Player2Wallet: "celestia1bob",
		BlockHeight:   4242,
		Namespace:     "trivia",
	}).Return(nil)

	got, err := rec.RecordMatch(context.Background(), finishedGame())
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), got.BlockHeight)
}

func TestRecordMatchSkipsAbortedGames(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := NewRecorder(mocks.NewMockMatchStore(ctrl), mocks.NewMockBlobStore(ctrl), "trivia")

	res := finishedGame()
	res.Aborted, res.Winner = true, ""
	got, err := rec.RecordMatch(context.Background(), res)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordMatchBlobFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	matches := mocks.NewMockMatchStore(ctrl)
	blobs := mocks.NewMockBlobStore(ctrl)
	rec := NewRecorder(matches, blobs, "trivia")

	matches.EXPECT().ReserveMatchID(gomock.Any()).Return(int64(3), nil)
	blobs.EXPECT().SubmitBlob(gomock.Any(), gomock.Any(), gomock.Any()).Return(uint64(0), errors.New("node down"))
	matches.EXPECT().InsertMatchRecord(gomock.Any(), gomock.Any()).Times(0)

	_, err := rec.RecordMatch(context.Background(), finishedGame())
	assert.Error(t, err)
}

func TestFetchMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	matches := mocks.NewMockMatchStore(ctrl)
	blobs := mocks.NewMockBlobStore(ctrl)
	rec := NewRecorder(matches, blobs, "trivia")
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		matches.EXPECT().GetMatchRecord(gomock.Any(), int64(5)).
			Return(&models.MatchRecord{ID: 5, BlockHeight: 99, Namespace: "trivia"}, nil)
		blobs.EXPECT().GetBlob(gomock.Any(), uint64(99), "trivia", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uint64, _ string, out any) error {
				out.(*models.GameData).GameID = 5
				return nil
			})

		data, err := rec.FetchMatch(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), data.GameID)
	})
	t.Run("missing row", func(t *testing.T) {
		matches.EXPECT().GetMatchRecord(gomock.Any(), int64(6)).Return(nil, database.ErrNotFound)
		_, err := rec.FetchMatch(ctx, 6)
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("unreadable blob", func(t *testing.T) {
		matches.EXPECT().GetMatchRecord(gomock.Any(), int64(8)).
			Return(&models.MatchRecord{ID: 8, BlockHeight: 1, Namespace: "trivia"}, nil)
		blobs.EXPECT().GetBlob(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("pruned"))
		_, err := rec.FetchMatch(ctx, 8)
		assert.ErrorIs(t, err, ErrBlobUnavailable)
	})
}

func TestPlayerHistoryNeverNil(t *testing.T) {
	ctrl := gomock.NewController(t)
	matches := mocks.NewMockMatchStore(ctrl)
	rec := NewRecorder(matches, mocks.NewMockBlobStore(ctrl), "trivia")

	matches.EXPECT().GetPlayerMatches(gomock.Any(), "celestia1alice").Return(nil, nil)
	got, err := rec.PlayerHistory(context.Background(), "celestia1alice")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
