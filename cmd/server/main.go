// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mamathon/triviawager/internal/auth"
	"github.com/mamathon/triviawager/internal/cache"
	"github.com/mamathon/triviawager/internal/config"
	"github.com/mamathon/triviawager/internal/database"
	"github.com/mamathon/triviawager/internal/handlers"
	"github.com/mamathon/triviawager/internal/ledger"
	"github.com/mamathon/triviawager/internal/lobby"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/mamathon/triviawager/internal/questions"
	"github.com/mamathon/triviawager/internal/records"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.Logger()
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)

	if cfg.JWTSecret != "" {
		err = auth.InitWithSecret(cfg.JWTSecret, cfg.TokenExpireTime)
	} else {
		logger.Warn("JWT_SECRET_KEY not set, using ephemeral signing keys")
		err = auth.Init(cfg.TokenExpireTime)
	}
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hooks lobby.Hooks

	if cfg.DatabaseURL != "" {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			logger.Fatalf("schema: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, match records disabled")
	}

	if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Warnf("redis unavailable, action log disabled: %v", err)
	} else {
		defer cache.Rdb.Close()
		queue := cache.NewActionQueue(cache.Rdb, cfg.ActionQueue)
		hooks.OnAction = func(rec models.ActionRecord) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := queue.Publish(pubCtx, rec); err != nil {
				logger.WithError(err).WithField("lobby", rec.LobbyID).Warn("failed to publish action")
			}
		}
	}

	var (
		settler  lobby.Settler
		verifier handlers.TxVerifier
		recorder handlers.MatchRecords
	)
	if cfg.LedgerEnabled() {
		client := ledger.New(ledger.Config{
			RPCURL:      cfg.RPCURL,
			TxStatusURL: cfg.TxStatusURL,
			BlockURL:    cfg.BlockURL,
			APIKey:      cfg.APIKey,
			Wallet:      cfg.WalletAddress,
		})
		settler, verifier = client, client
		if database.DB != nil {
			rec := records.NewRecorder(database.MatchStore{}, client, cfg.BlobNamespace)
			hooks.OnGameEnd = rec.OnGameEnd
			recorder = rec
		}
	} else {
		logger.Warn("RPC_URL or WALLET_ADDRESS not set, settlement disabled")
	}

	var source lobby.QuestionSource
	if cfg.QuestionAPIURL != "" {
		source = questions.NewHTTPSource(cfg.QuestionAPIURL, cfg.QuestionAPIKey, cfg.QuestionModel, cfg.QuestionTimeout)
	} else {
		logger.Warn("QUESTION_API_URL not set, using the built-in question bank")
		source = questions.NewStaticSource()
	}

	store := lobby.NewLobbyStore(source, settler, lobby.Options{
		Timing: lobby.Timing{
			RoundDuration: cfg.RoundDuration,
			BreakDuration: cfg.BreakDuration,
		},
		QuestionRetries: cfg.QuestionRetries,
		RetryBackoff:    time.Second,
		QuestionTimeout: cfg.QuestionTimeout,
		Hooks:           hooks,
	})
	go runReaper(ctx, store, cfg.LobbyTTL)

	gs := handlers.NewGameServer(store, recorder, verifier, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           gs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
		for id := range store.GetLobbies() {
			store.DeleteLobby(id)
		}
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	<-shutdownDone
	logger.Info("server stopped")
}

// runReaper drops idle lobbies every quarter ttl until ctx ends.
func runReaper(ctx context.Context, store *lobby.LobbyStore, ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			store.Reap(now, ttl)
		}
	}
}
