// internal/lobby/lobby_store.go
package lobby

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Options configures every lobby created by a LobbyStore.
type Options struct {
	Timing          Timing
	QuestionRetries int
	RetryBackoff    time.Duration
	QuestionTimeout time.Duration
	SettleTimeout   time.Duration
	Hooks           Hooks
}

func (o Options) withDefaults() Options {
	o.Timing = o.Timing.withDefaults()
	if o.QuestionRetries < 0 {
		o.QuestionRetries = 0
	}
	if o.QuestionTimeout <= 0 {
		o.QuestionTimeout = DefaultQuestionTimeout
	}
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = DefaultSettleTimeout
	}
	return o
}

// idAttempts bounds how often Create retries a colliding or failed uuid draw.
const idAttempts = 3

// LobbyStore is the registry of active lobbies. Its lock only guards the map;
// it is never held while a lobby's own lock is taken.
type LobbyStore struct {
	mu      sync.Mutex
	lobbies map[uuid.UUID]*Lobby

	questions QuestionSource
	settler   Settler
	opts      Options
}

// NewLobbyStore builds an empty registry whose lobbies share the given
// collaborators.
func NewLobbyStore(questions QuestionSource, settler Settler, opts Options) *LobbyStore {
	return &LobbyStore{
		lobbies:   make(map[uuid.UUID]*Lobby),
		questions: questions,
		settler:   settler,
		opts:      opts.withDefaults(),
	}
}

// Create registers a waiting lobby with owner as its only, not-ready member.
func (s *LobbyStore) Create(owner, topic string, bet, initialCredits int) (*Lobby, error) {
	switch {
	case owner == "":
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	case topic == "":
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	case bet < 0:
		return nil, fmt.Errorf("%w: bet must not be negative", ErrInvalidInput)
	case initialCredits < 0:
		return nil, fmt.Errorf("%w: initial credits must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < idAttempts; i++ {
		id, err := uuid.NewRandom()
		if err != nil {
			log.WithError(err).Warn("lobby id allocation failed")
			continue
		}
		if _, exists := s.lobbies[id]; exists {
			continue
		}
		l := newLobby(id, owner, topic, bet, s.questions, s.settler, s.opts)
		l.addPlayerUnsafe(owner, initialCredits)
		l.onEmpty = s.DeleteLobby
		l.logActionUnsafe(owner, "create", map[string]interface{}{"topic": topic, "bet": bet})
		s.lobbies[id] = l
		log.WithFields(log.Fields{"lobby": id, "player": owner, "topic": topic}).Info("lobby created")
		return l, nil
	}
	return nil, fmt.Errorf("could not allocate a lobby id after %d attempts", idAttempts)
}

// GetLobby looks a lobby up by id.
func (s *LobbyStore) GetLobby(id uuid.UUID) (*Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[id]
	return l, ok
}

// Get resolves a client-supplied id. Unparseable and unknown ids both report
// ErrNotFound.
func (s *LobbyStore) Get(rawID string) (*Lobby, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: lobby %q", ErrNotFound, rawID)
	}
	l, ok := s.GetLobby(id)
	if !ok {
		return nil, fmt.Errorf("%w: lobby %s", ErrNotFound, id)
	}
	return l, nil
}

// DeleteLobby removes the lobby and closes it. Deleting an unknown id is a no-op.
func (s *LobbyStore) DeleteLobby(id uuid.UUID) {
	s.mu.Lock()
	l, ok := s.lobbies[id]
	delete(s.lobbies, id)
	s.mu.Unlock()

	if !ok {
		return
	}
	l.Close()
	log.WithField("lobby", id).Info("lobby deleted")
}

// GetLobbies returns a copy of the registry map.
func (s *LobbyStore) GetLobbies() map[uuid.UUID]*Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]*Lobby, len(s.lobbies))
	for k, v := range s.lobbies {
		out[k] = v
	}
	return out
}

// Reap drops finished lobbies older than ttl and waiting lobbies nobody has
// touched or watched for ttl. It returns how many were removed.
func (s *LobbyStore) Reap(now time.Time, ttl time.Duration) int {
	removed := 0
	for id, l := range s.GetLobbies() {
		if !l.reapable(now, ttl) {
			continue
		}
		s.DeleteLobby(id)
		removed++
	}
	if removed > 0 {
		log.WithField("count", removed).Info("reaped idle lobbies")
	}
	return removed
}
