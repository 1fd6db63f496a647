// internal/lobby/rounds.go
package lobby

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/mamathon/triviawager/internal/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// StartGame fetches the question set and begins round one. The question source
// is called without the lobby lock, so a slow generator never stalls membership
// changes or other lobbies. A failed generation aborts the game.
func (l *Lobby) StartGame() error {
	l.mu.Lock()
	if l.closed || l.status != StatusPlaying || l.starting {
		l.mu.Unlock()
		return fmt.Errorf("%w: lobby %s cannot start", ErrPreconditionFailed, l.ID)
	}
	l.starting = true
	topic := l.Topic
	l.mu.Unlock()

	items, err := l.fetchQuestions(topic)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.status != StatusPlaying {
		log.WithField("lobby", l.ID).Debug("lobby changed while generating questions, discarding set")
		return nil
	}
	if err != nil {
		l.abortGameUnsafe(err)
		return err
	}

	l.questionQueue = items
	l.asked = nil
	for id := range l.scores {
		l.scores[id] = 0
	}
	l.startNewRoundUnsafe()
	return nil
}

// fetchQuestions calls the source with retries and linear backoff. A set with
// fewer than QuestionsPerGame usable items counts as a failure.
func (l *Lobby) fetchQuestions(topic string) ([]models.QuestionItem, error) {
	if l.questions == nil {
		return nil, fmt.Errorf("%w: no question source configured", ErrUpstreamFailure)
	}
	attempts := l.opts.QuestionRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), l.opts.QuestionTimeout)
		items, err := l.questions.Generate(ctx, topic)
		cancel()
		if err == nil {
			valid := lo.Filter(items, func(q models.QuestionItem, _ int) bool {
				return strings.TrimSpace(q.Question) != ""
			})
			if len(valid) >= QuestionsPerGame {
				return valid[:QuestionsPerGame], nil
			}
			err = fmt.Errorf("got %d usable questions, need %d", len(valid), QuestionsPerGame)
		}
		lastErr = err
		log.WithError(err).WithFields(log.Fields{"lobby": l.ID, "attempt": attempt}).Warn("question generation failed")

		if attempt < attempts {
			if l.isClosed() {
				break
			}
			time.Sleep(time.Duration(attempt) * l.opts.RetryBackoff)
		}
	}
	return nil, fmt.Errorf("%w: generating questions: %w", ErrUpstreamFailure, lastErr)
}

func (l *Lobby) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// startNewRoundUnsafe pops the next question and arms the round timer. An empty
// queue ends the game.
func (l *Lobby) startNewRoundUnsafe() {
	if len(l.questionQueue) == 0 {
		l.endGameUnsafe("")
		return
	}

	q := l.questionQueue[0]
	l.questionQueue = l.questionQueue[1:]
	l.currentQuestion = &q
	l.asked = append(l.asked, q)
	l.guesses = make(map[string]int)
	l.round++
	round := l.round

	l.broadcastUnsafe(Event{Type: EventNewRound, Payload: NewRoundPayload{
		Round:         round,
		Question:      q.Question,
		Players:       l.membersUnsafe(),
		Scores:        lo.Assign(l.scores),
		TimerDuration: int(math.Ceil(l.opts.Timing.RoundDuration.Seconds())),
	}})
	l.logActionUnsafe("", "new_round", map[string]interface{}{"round": round, "question": q.Question})
	l.scheduleUnsafe(l.opts.Timing.RoundDuration, func() { l.evaluateRound(round) })
}

// evaluateRound closes round and scores the closest guess. Stale timers, for a
// previous round or a closed lobby, are no-ops.
func (l *Lobby) evaluateRound(round int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.status != StatusPlaying || l.round != round || l.currentQuestion == nil {
		return
	}

	answer := l.currentQuestion.Answer
	var winner *string
	if id, ok := closestGuess(l.guesses, answer); ok {
		l.scores[id]++
		winner = &id
	}
	l.currentQuestion = nil
	l.guesses = make(map[string]int)

	fields := log.Fields{"lobby": l.ID, "round": round}
	if winner != nil {
		fields["player"] = *winner
	}
	log.WithFields(fields).Debug("round evaluated")

	l.broadcastUnsafe(Event{Type: EventRoundResult, Payload: RoundResultPayload{
		Round:         round,
		CorrectAnswer: answer,
		Winner:        winner,
		Scores:        lo.Assign(l.scores),
	}})
	l.logActionUnsafe("", "round_result", map[string]interface{}{"round": round, "answer": answer, "winner": winner})
	l.scheduleUnsafe(l.opts.Timing.BreakDuration, func() { l.afterBreak(round) })
}

// afterBreak either ends the game or starts the round after round.
func (l *Lobby) afterBreak(round int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.status != StatusPlaying || l.round != round || l.currentQuestion != nil {
		return
	}
	l.timer = nil

	if lo.Max(lo.Values(l.scores)) >= WinningScore || len(l.questionQueue) == 0 {
		l.endGameUnsafe("")
		return
	}
	l.startNewRoundUnsafe()
}

// endGameUnsafe settles the wager. forced names the winner when the game ends
// by forfeit; otherwise the top scorer wins.
func (l *Lobby) endGameUnsafe(forced string) {
	if l.status == StatusFinished {
		return
	}
	l.stopTimerUnsafe()
	l.status = StatusFinished
	l.finishedAt = time.Now()
	l.currentQuestion = nil
	l.questionQueue = nil
	l.guesses = make(map[string]int)

	winner := forced
	if winner == "" {
		winner, _ = topScorer(l.scores)
	}

	var winnerRef *string
	if winner != "" {
		winnerRef = &winner
		for id, p := range l.players {
			if id == winner {
				p.Credits += l.Bet
			} else {
				p.Credits -= l.Bet
			}
		}
		if amount := l.Bet * len(l.stakers); amount > 0 && l.settler != nil {
			go l.settle(winner, amount)
		}
	}

	scores := lo.Assign(l.scores)
	credits := l.creditsUnsafe()
	log.WithFields(log.Fields{"lobby": l.ID, "winner": winner, "forced": forced != ""}).Info("game finished")

	l.broadcastUnsafe(Event{Type: EventGameOver, Payload: GameOverPayload{
		Winner:  winnerRef,
		Scores:  scores,
		Credits: credits,
	}})
	l.logActionUnsafe(forced, "game_over", map[string]interface{}{"winner": winner, "scores": scores})
	l.notifyGameEndUnsafe(winner, false)
}

// abortGameUnsafe finishes a game that never got its questions. Credits are
// untouched and nothing is settled.
func (l *Lobby) abortGameUnsafe(cause error) {
	if l.status == StatusFinished {
		return
	}
	l.stopTimerUnsafe()
	l.status = StatusFinished
	l.finishedAt = time.Now()
	l.currentQuestion = nil
	l.questionQueue = nil

	log.WithError(cause).WithField("lobby", l.ID).Error("game aborted")
	l.broadcastUnsafe(Event{Type: EventError, Payload: ErrorPayload{Message: "could not generate questions, game aborted"}})
	l.broadcastUnsafe(Event{Type: EventGameOver, Payload: GameOverPayload{
		Scores:  lo.Assign(l.scores),
		Credits: l.creditsUnsafe(),
		Aborted: true,
	}})
	l.logActionUnsafe("", "game_aborted", map[string]interface{}{"reason": cause.Error()})
	l.notifyGameEndUnsafe("", true)
}

func (l *Lobby) notifyGameEndUnsafe(winner string, aborted bool) {
	if l.opts.Hooks.OnGameEnd == nil {
		return
	}
	// Stakers who left still appear in the result with their last known score.
	scores := make(map[string]int, len(l.stakers))
	for _, id := range l.stakers {
		scores[id] = l.scores[id]
	}
	res := GameResult{
		LobbyID:   l.ID,
		Topic:     l.Topic,
		Bet:       l.Bet,
		Players:   slices.Clone(l.stakers),
		Winner:    winner,
		Scores:    scores,
		Credits:   l.creditsUnsafe(),
		Questions: slices.Clone(l.asked),
		Aborted:   aborted,
		EndedAt:   l.finishedAt,
	}
	go l.opts.Hooks.OnGameEnd(res)
}

func (l *Lobby) settle(winner string, amount int) {
	ctx, cancel := context.WithTimeout(context.Background(), l.opts.SettleTimeout)
	defer cancel()
	if err := l.settler.Settle(ctx, winner, amount); err != nil {
		log.WithError(err).WithFields(log.Fields{"lobby": l.ID, "player": winner, "amount": amount}).Error("settlement failed")
		return
	}
	log.WithFields(log.Fields{"lobby": l.ID, "player": winner, "amount": amount}).Info("settlement sent")
}

// scheduleUnsafe replaces the in-flight continuation with fn after d.
func (l *Lobby) scheduleUnsafe(d time.Duration, fn func()) {
	l.stopTimerUnsafe()
	l.timer = time.AfterFunc(d, fn)
}

func (l *Lobby) stopTimerUnsafe() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// closestGuess returns the player whose guess is nearest answer. Ties go to the
// lowest player id.
func closestGuess(guesses map[string]int, answer int) (string, bool) {
	ids := lo.Keys(guesses)
	slices.Sort(ids)
	best, bestDist := "", 0
	for _, id := range ids {
		d := guesses[id] - answer
		if d < 0 {
			d = -d
		}
		if best == "" || d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}

// topScorer returns the highest scorer, lowest player id on ties.
func topScorer(scores map[string]int) (string, bool) {
	ids := lo.Keys(scores)
	slices.Sort(ids)
	best, bestScore := "", 0
	for _, id := range ids {
		if best == "" || scores[id] > bestScore {
			best, bestScore = id, scores[id]
		}
	}
	return best, best != ""
}
