package game

import (
	"encoding/json"
	"fmt"
	"time"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/player"
)

const snapshotVersion = 1

// Snapshot captures the whole game graph as plain values. Player and
// board back-references are rebuilt by Restore.
type Snapshot struct {
	Version    int              `json:"version"`
	Squares    []SquareState    `json:"squares"`
	Turn       core.Color       `json:"turn"`
	Started    bool             `json:"started"`
	Paused     bool             `json:"paused"`
	InitialFEN string           `json:"initialFen"`
	Halfmove   int              `json:"halfmove"`
	Fullmove   int              `json:"fullmove"`
	Control    core.TimeControl `json:"control"`
	Plies      []Ply            `json:"plies"`
	Players    [2]PlayerState   `json:"players"`
}

// SquareState is a square holding a piece, a ghost or both
type SquareState struct {
	Coord string       `json:"coord"`
	Piece *board.Piece `json:"piece,omitempty"`
	Ghost core.Color   `json:"ghost,omitempty"`
}

type PlayerState struct {
	Color     core.Color         `json:"color"`
	Starting  map[board.Kind]int `json:"starting"`
	Promotion string             `json:"promotion,omitempty"`
	Clock     *player.ClockState `json:"clock,omitempty"`
}

// Snapshot records the game. A running clock is captured with its
// remaining time and the part of its delay spent at this instant.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Version:    snapshotVersion,
		Turn:       g.Turn(),
		Started:    g.started,
		Paused:     g.paused,
		InitialFEN: g.initialFEN,
		Halfmove:   g.halfmove,
		Fullmove:   g.fullmove,
		Control:    g.control,
		Plies:      g.History(),
	}

	for sq := range g.board.Squares() {
		p, occupied := sq.Piece()
		if !occupied && sq.Ghost() == 0 {
			continue
		}
		st := SquareState{Coord: sq.String(), Ghost: sq.Ghost()}
		if occupied {
			st.Piece = &p
		}
		s.Squares = append(s.Squares, st)
	}

	for i, p := range g.players {
		ps := PlayerState{Color: p.Color(), Starting: p.StartingPieces()}
		if c, ok := p.PendingPromotion(); ok {
			ps.Promotion = c.String()
		}
		if p.HasClock() {
			cs := p.Clock().State()
			ps.Clock = &cs
		}
		s.Players[i] = ps
	}
	return s
}

func (s Snapshot) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ParseSnapshot decodes a snapshot written by Snapshot
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return s, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return s, nil
}

// Restore rebuilds a game from a snapshot. If the game was running, the
// side to move's clock resumes from the recorded remaining time and delay.
func Restore(s Snapshot, opts ...Option) (*Game, error) {
	if !s.Turn.Valid() {
		return nil, fmt.Errorf("snapshot: invalid turn %d", s.Turn)
	}

	b := board.Empty()
	for _, st := range s.Squares {
		c, err := board.ParseCoord(st.Coord)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		if st.Piece != nil {
			b.Place(c, *st.Piece)
		}
		if st.Ghost != 0 {
			b.SetGhost(c, st.Ghost)
		}
	}
	for _, color := range core.Colors {
		if _, ok := b.KingSquare(color); !ok {
			return nil, fmt.Errorf("snapshot: no %s king", color.Name())
		}
	}

	g := &Game{
		board:      b,
		turn:       s.Turn.Index(),
		started:    s.Started,
		paused:     s.Paused,
		initialFEN: s.InitialFEN,
		halfmove:   s.Halfmove,
		fullmove:   s.Fullmove,
		plies:      append([]Ply(nil), s.Plies...),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	// the saved clocks decide, whatever time control opts carry
	g.control = s.Control

	extra := make(map[core.Color][]player.Option)
	for _, ps := range s.Players {
		if !ps.Color.Valid() {
			return nil, fmt.Errorf("snapshot: invalid player color %d", ps.Color)
		}
		var po []player.Option
		if ps.Starting != nil {
			po = append(po, player.WithStartingPieces(ps.Starting))
		}
		if ps.Promotion != "" {
			c, err := board.ParseCoord(ps.Promotion)
			if err != nil {
				return nil, fmt.Errorf("snapshot: promotion square: %w", err)
			}
			po = append(po, player.WithPendingPromotion(c))
		}
		if ps.Clock != nil {
			po = append(po, player.WithClock(player.RestoreClock(*ps.Clock, g.now)))
		}
		extra[ps.Color] = po
	}
	g.players = g.newPlayers(extra)

	if g.started && !g.paused {
		g.CurrentPlayer().StartClock()
	}
	return g, nil
}
