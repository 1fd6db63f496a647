// internal/historian/historian.go
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mamathon/triviawager/internal/models"
	log "github.com/sirupsen/logrus"
)

// Queue yields lobby action records, blocking up to timeout. A nil record with
// a nil error means the wait timed out.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (*models.ActionRecord, error)
}

// Store persists actions and closes sessions that went quiet.
type Store interface {
	InsertActions(ctx context.Context, records []models.ActionRecord) error
	MarkAbandoned(ctx context.Context, lobbyID uuid.UUID) (bool, error)
}

type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	// Inactivity is how long a lobby may go without actions before its
	// session is marked abandoned.
	Inactivity    time.Duration
	SweepInterval time.Duration
	PopTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 500 * time.Millisecond
	}
	if c.Inactivity <= 0 {
		c.Inactivity = 10 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.PopTimeout <= 0 {
		c.PopTimeout = 3 * time.Second
	}
	return c
}

// terminal action types end a session; such lobbies are no longer tracked for
// inactivity.
var terminal = map[string]bool{"game_over": true, "game_aborted": true}

// Service drains the action queue into the store in batches.
type Service struct {
	queue Queue
	store Store
	cfg   Config

	lastActivity sync.Map // uuid.UUID -> time.Time

	batchMu sync.Mutex
	batch   []models.ActionRecord
}

func New(queue Queue, store Store, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		queue: queue,
		store: store,
		cfg:   cfg,
		batch: make([]models.ActionRecord, 0, cfg.BatchSize),
	}
}

// Run blocks until ctx is cancelled, then flushes whatever is still batched.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.readLoop(ctx) }()
	go func() { defer wg.Done(); s.flushLoop(ctx) }()
	go func() { defer wg.Done(); s.inactivityLoop(ctx) }()

	log.Info("historian started")
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Flush(flushCtx)
	log.Info("historian stopped")
}

func (s *Service) readLoop(ctx context.Context) {
	for ctx.Err() == nil {
		rec, err := s.queue.Pop(ctx, s.cfg.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("pop action")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if rec == nil {
			continue
		}
		s.Accept(ctx, *rec)
	}
}

// Accept tracks rec's lobby and adds it to the batch, flushing when full.
func (s *Service) Accept(ctx context.Context, rec models.ActionRecord) {
	if terminal[rec.ActionType] {
		s.lastActivity.Delete(rec.LobbyID)
	} else {
		s.lastActivity.Store(rec.LobbyID, time.Now())
	}

	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.cfg.BatchSize
	s.batchMu.Unlock()

	if full {
		s.Flush(ctx)
	}
}

func (s *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// Flush writes the pending batch in a single transaction. A failed batch is
// put back in front of newer records.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batch
	s.batch = make([]models.ActionRecord, 0, s.cfg.BatchSize)
	s.batchMu.Unlock()

	if err := s.store.InsertActions(ctx, pending); err != nil {
		log.WithError(err).WithField("count", len(pending)).Error("flush actions")
		s.batchMu.Lock()
		s.batch = append(pending, s.batch...)
		s.batchMu.Unlock()
		return
	}
	log.WithField("count", len(pending)).Debug("flushed actions")
}

func (s *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(ctx, now)
		}
	}
}

// Sweep marks every lobby idle for longer than the inactivity window as
// abandoned and stops tracking it.
func (s *Service) Sweep(ctx context.Context, now time.Time) {
	s.lastActivity.Range(func(key, val interface{}) bool {
		lobbyID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.cfg.Inactivity {
			return true
		}
		changed, err := s.store.MarkAbandoned(ctx, lobbyID)
		if err != nil {
			log.WithError(err).WithField("lobby", lobbyID).Error("mark abandoned")
			return true
		}
		s.lastActivity.Delete(lobbyID)
		if changed {
			log.WithField("lobby", lobbyID).Info("marked lobby abandoned due to inactivity")
		}
		return true
	})
}
