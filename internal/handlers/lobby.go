// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/mamathon/triviawager/internal/lobby"
	"github.com/samber/lo"
)

var validate = validator.New()

type createLobbyRequest struct {
	Topic          string `json:"topic" validate:"required,max=200"`
	Bet            int    `json:"bet" validate:"gte=0"`
	InitialCredits int    `json:"initialCredits" validate:"gte=0"`
}

// CreateLobbyHandler registers a waiting lobby owned by the caller's wallet.
func CreateLobbyHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := requireWallet(w, r)
		if !ok {
			return
		}

		var req createLobbyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "bad lobby request payload")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		l, err := gs.LobbyStore.Create(wallet, req.Topic, req.Bet, req.InitialCredits)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, l.Snapshot())
	}
}

// ListLobbiesHandler returns every registered lobby, oldest first.
func ListLobbiesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snaps := lo.Map(lo.Values(gs.LobbyStore.GetLobbies()), func(l *lobby.Lobby, _ int) lobby.Snapshot {
			return l.Snapshot()
		})
		slices.SortFunc(snaps, func(a, b lobby.Snapshot) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		writeJSON(w, http.StatusOK, snaps)
	}
}

// GetLobbyHandler returns one lobby's snapshot.
func GetLobbyHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := gs.LobbyStore.Get(r.PathValue("id"))
		if err != nil {
			writeJSONError(w, statusFor(err), "lobby not found")
			return
		}
		writeJSON(w, http.StatusOK, l.Snapshot())
	}
}
