// internal/handlers/records.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mamathon/triviawager/internal/records"
	log "github.com/sirupsen/logrus"
)

type verifyTransferRequest struct {
	TxHash string `json:"tx_hash" validate:"required"`
}

// VerifyTransferHandler reports whether a stake transfer is committed and
// recent enough to count.
func VerifyTransferHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gs.Verifier == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "ledger not configured")
			return
		}
		var req verifyTransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || validate.Struct(req) != nil {
			writeJSONError(w, http.StatusBadRequest, "Transaction hash is required")
			return
		}
		writeJSON(w, http.StatusOK, gs.Verifier.VerifyTransaction(r.Context(), req.TxHash))
	}
}

// GameRecordHandler returns the match document stored for a game id.
func GameRecordHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireWallet(w, r); !ok {
			return
		}
		if gs.Records == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "match records not configured")
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid game id")
			return
		}

		data, err := gs.Records.FetchMatch(r.Context(), id)
		switch {
		case errors.Is(err, records.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "Game not found")
			return
		case err != nil:
			log.WithError(err).WithField("game_id", id).Error("failed to fetch game record")
			writeJSONError(w, http.StatusInternalServerError, "Error retrieving game data")
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

// PlayerHistoryHandler lists the caller's recorded matches, newest first.
func PlayerHistoryHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := requireWallet(w, r)
		if !ok {
			return
		}
		if gs.Records == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "match records not configured")
			return
		}
		matches, err := gs.Records.PlayerHistory(r.Context(), wallet)
		if err != nil {
			log.WithError(err).WithField("player", wallet).Error("failed to load player history")
			writeJSONError(w, http.StatusInternalServerError, "Error retrieving player history")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
	}
}

// ProtectedHandler lets clients check that their token is still valid.
func ProtectedHandler(w http.ResponseWriter, r *http.Request) {
	wallet, ok := requireWallet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":       "Access granted",
		"walletAddress": wallet,
	})
}
