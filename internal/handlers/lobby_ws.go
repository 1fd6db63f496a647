// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/mamathon/triviawager/internal/lobby"
	"github.com/mamathon/triviawager/internal/middleware"
	"github.com/sirupsen/logrus"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// ClientMessage is one inbound realtime packet.
type ClientMessage struct {
	Type           string          `json:"type"`
	LobbyID        string          `json:"lobbyId"`
	Player         string          `json:"player"`
	InitialCredits int             `json:"initialCredits"`
	Guess          json.RawMessage `json:"guess"`
}

// lobbySession is the per-socket state owned by the read pump.
type lobbySession struct {
	lob    *lobby.Lobby
	conn   *lobby.Connection
	wallet string // from the session token
	player string // set to wallet once a join succeeds
	logger *logrus.Entry
}

// LobbyWSHandler upgrades /lobby/ws/{id} to the realtime lobby channel.
func LobbyWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "lobby" {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}

		// The token's wallet is the only identity a socket can act as.
		wallet, err := walletFromRequest(r)
		if errors.Is(err, errMissingToken) {
			c.Close(InvalidAuthTokenError, "missing auth token")
			return
		}
		if err != nil {
			c.Close(InvalidAuthTokenError, "invalid auth token")
			return
		}

		lob, err := gs.LobbyStore.Get(r.PathValue("id"))
		if err != nil {
			c.Close(InvalidLobbyIDError, "lobby does not exist")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		s := &lobbySession{
			lob:    lob,
			conn:   lobby.NewConnection(wallet, cancel, lobby.DefaultOutBuffer),
			wallet: wallet,
			logger: logger.WithFields(logrus.Fields{"lobby": lob.ID, "remote": remoteAddr}),
		}
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		go writePump(ctx, c, s.conn, s.logger)
		err = s.readPump(ctx, c)

		if s.player != "" {
			lob.Detach(s.player, s.conn)
		} else {
			s.conn.Close()
		}
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, err)
	}
}

// readPump decodes packets until the socket closes or the connection is
// cancelled. It returns the read error for logging, nil on a clean close.
func (s *lobbySession) readPump(ctx context.Context, c *websocket.Conn) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			s.logger.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.conn.WriteError("invalid JSON format")
			continue
		}
		if err := s.handle(msg); err != nil {
			s.logger.WithField("type", msg.Type).Debugf("rejected message: %v", err)
			s.conn.WriteError(err.Error())
		}
	}
}

// handle dispatches one packet. Every returned error goes back to this socket
// only; shared lobby state is untouched by rejected packets.
func (s *lobbySession) handle(msg ClientMessage) error {
	if msg.LobbyID != "" && msg.LobbyID != s.lob.ID.String() {
		return fmt.Errorf("%w: socket is bound to lobby %s", lobby.ErrInvalidInput, s.lob.ID)
	}

	switch msg.Type {
	case "join":
		return s.join(msg)
	case "ready", "submitGuess", "leave":
		player, err := s.actor(msg)
		if err != nil {
			return err
		}
		switch msg.Type {
		case "ready":
			_, err = s.lob.MarkReady(player)
		case "submitGuess":
			err = s.lob.SubmitGuess(player, guessText(msg.Guess))
		case "leave":
			if err = s.lob.Leave(player); err == nil {
				s.player = ""
			}
		}
		return err
	default:
		return fmt.Errorf("%w: unknown message type %q", lobby.ErrInvalidInput, msg.Type)
	}
}

func (s *lobbySession) join(msg ClientMessage) error {
	if msg.Player != "" && msg.Player != s.wallet {
		return fmt.Errorf("%w: player does not match session", lobby.ErrInvalidInput)
	}
	player := s.wallet
	if err := s.lob.Join(player, msg.InitialCredits, s.conn); err != nil {
		return err
	}
	s.player = player
	s.logger = s.logger.WithField("player", player)
	return nil
}

// actor resolves who a non-join packet speaks for. A socket may only act as
// the player it joined as.
func (s *lobbySession) actor(msg ClientMessage) (string, error) {
	if s.player == "" {
		return "", fmt.Errorf("%w: join the lobby first", lobby.ErrPreconditionFailed)
	}
	if msg.Player != "" && msg.Player != s.player {
		return "", fmt.Errorf("%w: socket is joined as %s", lobby.ErrInvalidInput, s.player)
	}
	return s.player, nil
}

// guessText accepts a guess sent either as a JSON number or a string.
func guessText(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return strings.TrimSpace(string(raw))
}

// writePump drains OutChan onto the socket and keeps it alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *lobby.Connection, logger *logrus.Entry) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal outgoing %s event: %v", ev.Type, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("write error: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed: %v", err)
				return
			}
		}
	}
}
