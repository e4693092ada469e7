// Package service owns the live games of the server: the in-memory
// registry, seat tokens, long-poll notification and persistence hooks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chessrules/internal/game"
	"chessrules/internal/server/storage"
)

const (
	SeatTokenTTL       = 24 * time.Hour
	ClockSweepInterval = 500 * time.Millisecond
	RestoreWindow      = 7 * 24 * time.Hour
)

var ErrGameNotFound = errors.New("game not found")

// Service coordinates game state and storage
type Service struct {
	games     map[string]*session
	mu        sync.RWMutex
	store     *storage.Store
	jwtSecret []byte
	waiter    *WaitRegistry
	now       func() time.Time
	tokenTTL  time.Duration
}

// session is one live game; mu serializes every access to g
type session struct {
	mu       sync.Mutex
	id       string
	g        *game.Game
	version  int
	created  time.Time
	recorded int // plies already written to storage
	finished bool
}

type Option func(*Service)

// WithNow replaces the wall clock for game clocks and timestamps
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithWaitTimeout bounds long-poll waits
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Service) { s.waiter = NewWaitRegistry(d) }
}

func WithTokenTTL(d time.Duration) Option {
	return func(s *Service) { s.tokenTTL = d }
}

// New creates a service; store may be nil to run without persistence
func New(store *storage.Store, jwtSecret []byte, opts ...Option) *Service {
	s := &Service{
		games:     make(map[string]*session),
		store:     store,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(WaitTimeout),
		now:       time.Now,
		tokenTTL:  SeatTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GameCount returns the number of live games
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// RegisterWait parks a client until the game moves past version. The
// channel is already closed when version is stale or the game is gone.
func (s *Service) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	sess, err := s.lookup(gameID)
	if err != nil {
		return closedWait()
	}

	// Update bumps the version under sess.mu and notifies after unlocking,
	// so registering under the lock cannot miss a change
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.version != version {
		return closedWait()
	}
	return s.waiter.RegisterWait(ctx, gameID, version)
}

func closedWait() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	s.games = make(map[string]*session)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunClockSweep periodically ends games whose running clock has expired,
// so waiting clients learn about a flag fall without anyone moving
func (s *Service) RunClockSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepClocks(); n > 0 {
				log.Printf("clock sweep: %d game(s) timed out", n)
			}
		}
	}
}

// RestoreGames reloads unfinished games saved within the restore window
func (s *Service) RestoreGames() (int, error) {
	if s.store == nil {
		return 0, nil
	}

	records, err := s.store.LoadSnapshots(s.now().UTC().Add(-RestoreWindow))
	if err != nil {
		return 0, fmt.Errorf("load snapshots: %w", err)
	}

	restored := 0
	for _, rec := range records {
		snap, err := game.ParseSnapshot(rec.Data)
		if err != nil {
			log.Printf("restore: skipping game %s: %v", rec.GameID, err)
			continue
		}
		g, err := game.Restore(snap, game.WithNow(s.now))
		if err != nil {
			log.Printf("restore: skipping game %s: %v", rec.GameID, err)
			continue
		}

		sess := &session{
			id:       rec.GameID,
			g:        g,
			version:  rec.Version,
			created:  rec.UpdatedUTC,
			recorded: completedPlies(g),
		}
		s.mu.Lock()
		s.games[rec.GameID] = sess
		s.mu.Unlock()
		restored++
	}
	return restored, nil
}
