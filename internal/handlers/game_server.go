// internal/handlers/game_server.go
package handlers

import (
	"context"
	"net/http"

	"github.com/mamathon/triviawager/internal/ledger"
	"github.com/mamathon/triviawager/internal/lobby"
	"github.com/mamathon/triviawager/internal/middleware"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/sirupsen/logrus"
)

// MatchRecords serves recorded matches. *records.Recorder satisfies it.
type MatchRecords interface {
	FetchMatch(ctx context.Context, id int64) (*models.GameData, error)
	PlayerHistory(ctx context.Context, wallet string) ([]models.MatchSummary, error)
}

// TxVerifier checks stake transfers. *ledger.Client satisfies it.
type TxVerifier interface {
	VerifyTransaction(ctx context.Context, hash string) ledger.Verification
}

// GameServer holds the lobby registry and the off-core collaborators the HTTP
// and websocket handlers need. Records and Verifier may be nil when the
// database or ledger is not configured; their routes then answer 503.
type GameServer struct {
	LobbyStore *lobby.LobbyStore
	Records    MatchRecords
	Verifier   TxVerifier
	Logger     *logrus.Logger
}

func NewGameServer(store *lobby.LobbyStore, records MatchRecords, verifier TxVerifier, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GameServer{
		LobbyStore: store,
		Records:    records,
		Verifier:   verifier,
		Logger:     logger,
	}
}

// Routes builds the service mux with request logging on every route.
func (gs *GameServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /lobby/create", CreateLobbyHandler(gs))
	mux.HandleFunc("GET /lobby/list", ListLobbiesHandler(gs))
	mux.HandleFunc("GET /lobby/{id}", GetLobbyHandler(gs))
	mux.HandleFunc("GET /lobby/ws/{id}", LobbyWSHandler(gs.Logger, gs))

	mux.HandleFunc("POST /verify_transfer", VerifyTransferHandler(gs))
	mux.HandleFunc("GET /game_record/{id}", GameRecordHandler(gs))
	mux.HandleFunc("GET /player_history", PlayerHistoryHandler(gs))
	mux.HandleFunc("POST /protected", ProtectedHandler)

	return middleware.LogMiddleware(gs.Logger)(mux)
}
