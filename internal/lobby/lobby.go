// internal/lobby/lobby.go
package lobby

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Status is the lobby lifecycle state. It only ever moves forward:
// waiting -> playing -> finished.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	// RequiredPlayers is the fixed head-to-head size that triggers a game start.
	RequiredPlayers  = 2
	QuestionsPerGame = 5
	// WinningScore ends the game early once any player reaches it.
	WinningScore = 3

	DefaultRoundDuration   = 15 * time.Second
	DefaultBreakDuration   = 5 * time.Second
	DefaultQuestionTimeout = 20 * time.Second
	DefaultSettleTimeout   = 30 * time.Second
)

// Timing controls the two suspension points of a round.
type Timing struct {
	RoundDuration time.Duration
	BreakDuration time.Duration
}

func (t Timing) withDefaults() Timing {
	if t.RoundDuration <= 0 {
		t.RoundDuration = DefaultRoundDuration
	}
	if t.BreakDuration <= 0 {
		t.BreakDuration = DefaultBreakDuration
	}
	return t
}

// Hooks are invoked asynchronously and never under the lobby lock.
type Hooks struct {
	OnGameEnd func(GameResult)
	OnAction  func(models.ActionRecord)
}

// GameResult is handed to Hooks.OnGameEnd once a lobby reaches finished.
type GameResult struct {
	LobbyID   uuid.UUID
	Topic     string
	Bet       int
	Players   []string
	Winner    string
	Scores    map[string]int
	Credits   map[string]int
	Questions []models.QuestionItem
	Aborted   bool
	EndedAt   time.Time
}

// Player is a member's wager state.
type Player struct {
	Credits int  `json:"credits"`
	Ready   bool `json:"ready"`
}

// Lobby is one game session. Every field below mu is guarded by it; methods
// with the Unsafe suffix assume the caller holds the lock.
type Lobby struct {
	ID        uuid.UUID
	Owner     string
	Topic     string
	Bet       int
	CreatedAt time.Time

	mu sync.Mutex

	status          Status
	players         map[string]*Player
	scores          map[string]int
	questionQueue   []models.QuestionItem
	currentQuestion *models.QuestionItem
	asked           []models.QuestionItem
	guesses         map[string]int
	round           int
	stakers         []string

	// timer is the single in-flight continuation (round expiry or break).
	timer    *time.Timer
	starting bool
	closed   bool

	lastActivity time.Time
	finishedAt   time.Time

	connections map[string]*Connection
	actionIndex int

	questions QuestionSource
	settler   Settler
	opts      Options

	// onEmpty is called without the lock once the last member leaves.
	onEmpty func(uuid.UUID)
}

func newLobby(id uuid.UUID, owner, topic string, bet int, questions QuestionSource, settler Settler, opts Options) *Lobby {
	now := time.Now()
	return &Lobby{
		ID:           id,
		Owner:        owner,
		Topic:        topic,
		Bet:          bet,
		CreatedAt:    now,
		status:       StatusWaiting,
		players:      make(map[string]*Player),
		scores:       make(map[string]int),
		guesses:      make(map[string]int),
		connections:  make(map[string]*Connection),
		lastActivity: now,
		questions:    questions,
		settler:      settler,
		opts:         opts,
	}
}

// ParseGuess converts a raw client guess into an integer.
func ParseGuess(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: guess %q is not an integer", ErrInvalidInput, raw)
	}
	return v, nil
}

// Join adds player to the lobby with the given starting credits. Joining as an
// existing member only re-attaches conn and sends it a fresh snapshot.
func (l *Lobby) Join(player string, credits int, conn *Connection) error {
	if player == "" {
		return fmt.Errorf("%w: player is required", ErrInvalidInput)
	}
	if credits < 0 {
		return fmt.Errorf("%w: initial credits must not be negative", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("%w: lobby %s", ErrNotFound, l.ID)
	}

	if _, ok := l.players[player]; ok {
		if conn != nil {
			l.attachUnsafe(player, conn)
			conn.Write(Event{Type: EventLobbyUpdate, Payload: l.snapshotUnsafe()})
		}
		return nil
	}
	if l.status != StatusWaiting {
		return fmt.Errorf("%w: lobby %s is %s", ErrPreconditionFailed, l.ID, l.status)
	}

	l.addPlayerUnsafe(player, credits)
	if conn != nil {
		l.attachUnsafe(player, conn)
	}
	l.logActionUnsafe(player, "join", map[string]interface{}{"credits": credits})
	l.broadcastUnsafe(Event{Type: EventLobbyUpdate, Payload: l.snapshotUnsafe()})
	return nil
}

func (l *Lobby) addPlayerUnsafe(player string, credits int) {
	l.players[player] = &Player{Credits: credits}
	l.scores[player] = 0
	l.touchUnsafe()
}

// attachUnsafe binds conn to player, closing any connection it replaces.
func (l *Lobby) attachUnsafe(player string, conn *Connection) {
	if old, ok := l.connections[player]; ok && old != conn {
		old.Close()
	}
	l.connections[player] = conn
	l.touchUnsafe()
}

// Detach drops conn from the broadcast set without changing membership.
func (l *Lobby) Detach(player string, conn *Connection) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.connections[player]; ok && cur == conn {
		delete(l.connections, player)
		l.touchUnsafe()
	}
	conn.Close()
}

// MarkReady flags player as ready. When exactly two members are present and
// both are ready the lobby moves to playing and question generation starts in
// the background. The return value reports whether that transition happened.
func (l *Lobby) MarkReady(player string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, fmt.Errorf("%w: lobby %s", ErrNotFound, l.ID)
	}
	p, ok := l.players[player]
	if !ok {
		return false, fmt.Errorf("%w: player %s is not in lobby %s", ErrNotFound, player, l.ID)
	}
	if l.status != StatusWaiting {
		return false, fmt.Errorf("%w: lobby %s is %s", ErrPreconditionFailed, l.ID, l.status)
	}

	p.Ready = true
	l.touchUnsafe()
	l.logActionUnsafe(player, "ready", nil)
	l.broadcastUnsafe(Event{Type: EventLobbyUpdate, Payload: l.snapshotUnsafe()})

	return l.maybeStartUnsafe(), nil
}

// maybeStartUnsafe moves a waiting lobby to playing once exactly the required
// number of members are present and all of them are ready.
func (l *Lobby) maybeStartUnsafe() bool {
	if l.status != StatusWaiting {
		return false
	}
	ready := lo.CountBy(lo.Values(l.players), func(p *Player) bool { return p.Ready })
	if len(l.players) != RequiredPlayers || ready != RequiredPlayers {
		return false
	}

	l.status = StatusPlaying
	l.stakers = l.membersUnsafe()
	l.logActionUnsafe("", "game_start", map[string]interface{}{"players": l.stakers, "bet": l.Bet})
	l.broadcastUnsafe(Event{Type: EventStartGame, Payload: StartGamePayload{LobbyID: l.ID}})
	go func() {
		if err := l.StartGame(); err != nil {
			log.WithError(err).WithField("lobby", l.ID).Warn("game did not start")
		}
	}()
	return true
}

// Leave removes player. The last member leaving closes the lobby; a playing
// lobby reduced to one member ends immediately with that member as winner.
func (l *Lobby) Leave(player string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("%w: lobby %s", ErrNotFound, l.ID)
	}
	if _, ok := l.players[player]; !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: player %s is not in lobby %s", ErrNotFound, player, l.ID)
	}

	delete(l.players, player)
	delete(l.scores, player)
	delete(l.guesses, player)
	if conn, ok := l.connections[player]; ok {
		delete(l.connections, player)
		conn.Close()
	}
	l.touchUnsafe()
	l.logActionUnsafe(player, "leave", nil)

	if len(l.players) == 0 {
		l.closeUnsafe()
		onEmpty := l.onEmpty
		l.mu.Unlock()
		if onEmpty != nil {
			onEmpty(l.ID)
		}
		return nil
	}

	l.broadcastUnsafe(Event{Type: EventLobbyUpdate, Payload: l.snapshotUnsafe()})
	switch {
	case l.status == StatusPlaying && len(l.players) == 1:
		l.endGameUnsafe(l.membersUnsafe()[0])
	case l.status == StatusWaiting:
		// The departure may leave exactly two ready members behind.
		l.maybeStartUnsafe()
	}
	l.mu.Unlock()
	return nil
}

// SubmitGuess records player's guess for the round in flight. Guesses outside
// a round are dropped silently.
func (l *Lobby) SubmitGuess(player, raw string) error {
	guess, err := ParseGuess(raw)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("%w: lobby %s", ErrNotFound, l.ID)
	}
	if _, ok := l.players[player]; !ok {
		return fmt.Errorf("%w: player %s is not in lobby %s", ErrNotFound, player, l.ID)
	}
	if l.status != StatusPlaying || l.currentQuestion == nil {
		log.WithFields(log.Fields{"lobby": l.ID, "player": player}).Debug("guess outside of a round dropped")
		return nil
	}

	l.guesses[player] = guess
	l.touchUnsafe()
	l.logActionUnsafe(player, "guess", map[string]interface{}{"round": l.round, "guess": guess})
	return nil
}

// Status returns the current lifecycle state.
func (l *Lobby) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Snapshot returns a copy of the lobby's public state.
func (l *Lobby) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotUnsafe()
}

func (l *Lobby) snapshotUnsafe() Snapshot {
	players := make(map[string]PlayerSnapshot, len(l.players))
	for id, p := range l.players {
		_, connected := l.connections[id]
		players[id] = PlayerSnapshot{
			Credits:   p.Credits,
			Ready:     p.Ready,
			Score:     l.scores[id],
			Connected: connected,
		}
	}
	return Snapshot{
		ID:        l.ID,
		Owner:     l.Owner,
		Topic:     l.Topic,
		Bet:       l.Bet,
		Status:    l.status,
		Round:     l.round,
		Players:   players,
		CreatedAt: l.CreatedAt,
	}
}

// Close stops any pending timer and disconnects every subscriber. Membership is
// left as is. Safe to call more than once.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeUnsafe()
}

func (l *Lobby) closeUnsafe() {
	if l.closed {
		return
	}
	l.closed = true
	l.stopTimerUnsafe()
	for id, conn := range l.connections {
		conn.Close()
		delete(l.connections, id)
	}
}

// reapable reports whether housekeeping may drop this lobby.
func (l *Lobby) reapable(now time.Time, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.status {
	case StatusFinished:
		return now.Sub(l.finishedAt) > ttl
	case StatusWaiting:
		return len(l.connections) == 0 && now.Sub(l.lastActivity) > ttl
	}
	return false
}

// membersUnsafe returns member ids in ascending order.
func (l *Lobby) membersUnsafe() []string {
	ids := lo.Keys(l.players)
	slices.Sort(ids)
	return ids
}

func (l *Lobby) creditsUnsafe() map[string]int {
	return lo.MapValues(l.players, func(p *Player, _ string) int { return p.Credits })
}

func (l *Lobby) touchUnsafe() {
	l.lastActivity = time.Now()
}

// broadcastUnsafe fans ev out to every attached connection. Called with the lock
// held so every subscriber observes transitions in order.
func (l *Lobby) broadcastUnsafe(ev Event) {
	for _, conn := range l.connections {
		conn.Write(ev)
	}
}

// logActionUnsafe numbers a state transition and hands it to Hooks.OnAction.
func (l *Lobby) logActionUnsafe(actor, actionType string, payload map[string]interface{}) {
	if l.opts.Hooks.OnAction == nil {
		return
	}
	l.actionIndex++
	rec := models.ActionRecord{
		LobbyID:       l.ID,
		ActionIndex:   l.actionIndex,
		Actor:         actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go l.opts.Hooks.OnAction(rec)
}
