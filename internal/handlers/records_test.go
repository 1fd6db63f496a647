// internal/handlers/records_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mamathon/triviawager/internal/ledger"
	"github.com/mamathon/triviawager/internal/lobby"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/mamathon/triviawager/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	games   map[int64]*models.GameData
	fail    error
	history map[string][]models.MatchSummary
}

func (f *fakeRecords) FetchMatch(_ context.Context, id int64) (*models.GameData, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	g, ok := f.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", records.ErrNotFound, id)
	}
	return g, nil
}

func (f *fakeRecords) PlayerHistory(_ context.Context, wallet string) ([]models.MatchSummary, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if h, ok := f.history[wallet]; ok {
		return h, nil
	}
	return []models.MatchSummary{}, nil
}

type fakeVerifier struct{ seen []string }

func (f *fakeVerifier) VerifyTransaction(_ context.Context, hash string) ledger.Verification {
	f.seen = append(f.seen, hash)
	return ledger.Verification{Valid: true, Message: "Transaction is valid"}
}

func authed(t *testing.T, method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, testWallet))
	return req
}

func TestVerifyTransfer(t *testing.T) {
	gs := newTestServer(t, lobby.Timing{})

	w := httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/verify_transfer", bytes.NewBufferString(`{"tx_hash":"0xabc"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	v := &fakeVerifier{}
	gs.Verifier = v

	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/verify_transfer", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/verify_transfer", bytes.NewBufferString(`{"tx_hash":"0xabc"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	var got ledger.Verification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, []string{"0xabc"}, v.seen)
}

func TestGameRecord(t *testing.T) {
	gs := newTestServer(t, lobby.Timing{})
	recs := &fakeRecords{games: map[int64]*models.GameData{
		7: {GameID: 7, BetAmount: 50, Winner: testWallet},
	}}
	gs.Records = recs

	w := httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game_record/7", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodGet, "/game_record/7", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var data models.GameData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(t, int64(7), data.GameID)
	assert.Equal(t, testWallet, data.Winner)

	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodGet, "/game_record/8", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodGet, "/game_record/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	recs.fail = fmt.Errorf("%w: rpc down", records.ErrBlobUnavailable)
	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodGet, "/game_record/7", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPlayerHistory(t *testing.T) {
	gs := newTestServer(t, lobby.Timing{})

	w := httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodGet, "/player_history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	recs := &fakeRecords{history: map[string][]models.MatchSummary{
		testWallet: {
			{MatchRecord: models.MatchRecord{ID: 2, Player1Wallet: "0xb0b", Player2Wallet: testWallet}},
			{MatchRecord: models.MatchRecord{ID: 1, Player1Wallet: testWallet, Player2Wallet: "0xb0b"}, IsPlayer1: true},
		},
	}}
	gs.Records = recs

	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodGet, "/player_history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Matches []models.MatchSummary `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Matches, 2)
	assert.Equal(t, int64(2), body.Matches[0].ID)
	assert.False(t, body.Matches[0].IsPlayer1)
	assert.True(t, body.Matches[1].IsPlayer1)

	recs.fail = errors.New("db down")
	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodGet, "/player_history", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProtected(t *testing.T) {
	gs := newTestServer(t, lobby.Timing{})

	w := httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, authed(t, http.MethodPost, "/protected", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Access granted", body["message"])
	assert.Equal(t, testWallet, body["walletAddress"])

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "garbage"})
	w = httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
