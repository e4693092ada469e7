package service

import (
	"encoding/json"
	"fmt"
	"log"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/server/storage"

	"github.com/google/uuid"
)

// CreateGame starts a game from fen, or the standard array when fen is
// empty, and issues one token per seat
func (s *Service) CreateGame(tc core.TimeControl, fen string) (string, core.SeatTokens, error) {
	if fen == "" {
		fen = board.StartingFEN
	}
	g, err := game.NewFromFEN(fen, game.WithTimeControl(tc), game.WithNow(s.now))
	if err != nil {
		return "", core.SeatTokens{}, err
	}

	gameID := uuid.New().String()
	tokens, err := s.issueSeatTokens(gameID)
	if err != nil {
		return "", core.SeatTokens{}, fmt.Errorf("issue seat tokens: %w", err)
	}

	sess := &session{id: gameID, g: g, created: s.now().UTC()}

	s.mu.Lock()
	s.games[gameID] = sess
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.RecordNewGame(storage.GameRecord{
			GameID:       gameID,
			InitialFEN:   fen,
			TimeMs:       tc.Time.Milliseconds(),
			IncrementMs:  tc.Increment.Milliseconds(),
			DelayMs:      tc.Delay.Milliseconds(),
			StartTimeUTC: sess.created,
		})
		sess.mu.Lock()
		s.persist(sess)
		sess.mu.Unlock()
	}

	return gameID, tokens, nil
}

func (s *Service) lookup(gameID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

// View runs fn with exclusive access to the game. fn must not keep g.
func (s *Service) View(gameID string, fn func(g *game.Game, version int) error) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.g, sess.version)
}

// Update runs fn with exclusive access to the game. When fn succeeds the
// version is bumped, the change persisted and waiting clients released.
func (s *Service) Update(gameID string, fn func(g *game.Game) error) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if err := fn(sess.g); err != nil {
		sess.mu.Unlock()
		return err
	}
	sess.version++
	version := sess.version
	s.persist(sess)
	sess.mu.Unlock()

	s.waiter.NotifyGame(gameID, version)
	return nil
}

// DeleteGame drops a game from memory and storage
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	_, ok := s.games[gameID]
	delete(s.games, gameID)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	s.waiter.RemoveGame(gameID)
	if s.store != nil {
		_ = s.store.DeleteGame(gameID)
	}
	return nil
}

// SweepClocks ends games whose flag has fallen and returns how many
func (s *Service) SweepClocks() int {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.games))
	for _, sess := range s.games {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	ended := 0
	for _, sess := range sessions {
		sess.mu.Lock()
		if sess.finished || !sess.g.TimeControl().Enabled() || sess.g.Status() != core.StateTimeout {
			sess.mu.Unlock()
			continue
		}
		sess.version++
		version := sess.version
		s.persist(sess)
		sess.mu.Unlock()

		s.waiter.NotifyGame(sess.id, version)
		ended++
	}
	return ended
}

// completedPlies is the ply count excluding a move still awaiting promotion
func completedPlies(g *game.Game) int {
	n := len(g.History())
	if _, pending := g.CurrentPlayer().PendingPromotion(); pending {
		n--
	}
	return n
}

// persist writes new plies, the result once decided and a fresh snapshot.
// Caller holds sess.mu.
func (s *Service) persist(sess *session) {
	g := sess.g
	state := g.Status()
	if state.Over() {
		sess.finished = true
	}
	if s.store == nil {
		return
	}

	plies := g.History()
	done := completedPlies(g)
	fen := g.FEN()
	now := s.now().UTC()
	for i := sess.recorded; i < done; i++ {
		_ = s.store.RecordMove(storage.MoveRecord{
			GameID:       sess.id,
			MoveNumber:   i + 1,
			Move:         plies[i].String(),
			FENAfterMove: fen,
			PlayerColor:  plies[i].Color.String(),
			MoveTimeUTC:  now,
		})
	}
	sess.recorded = max(sess.recorded, done)

	if state.Over() {
		winner := ""
		if w, ok := g.Winner(); ok {
			winner = w.String()
		}
		_ = s.store.RecordResult(sess.id, state.String(), winner)
	}

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		log.Printf("snapshot of game %s failed: %v", sess.id, err)
		return
	}
	_ = s.store.SaveSnapshot(storage.SnapshotRecord{
		GameID:     sess.id,
		Data:       data,
		Version:    sess.version,
		UpdatedUTC: now,
	})
}
