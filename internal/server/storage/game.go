package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) error {
	return s.enqueue("game record", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, initial_fen, time_ms, increment_ms, delay_ms, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.InitialFEN,
			record.TimeMs, record.IncrementMs, record.DelayMs,
			record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously records a completed ply
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			game_id, move_number, move, fen_after_move, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.Move,
			record.FENAfterMove, record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// RecordResult asynchronously stores how a game ended
func (s *Store) RecordResult(gameID, result, winner string) error {
	return s.enqueue("game result", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET result = ?, winner = ? WHERE game_id = ?`, result, winner, gameID)
		return err
	})
}

// SaveSnapshot asynchronously replaces the stored state of a game. Older
// versions never overwrite newer ones.
func (s *Store) SaveSnapshot(record SnapshotRecord) error {
	return s.enqueue("snapshot", func(tx *sql.Tx) error {
		query := `INSERT INTO snapshots (game_id, data, version, updated_utc)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(game_id) DO UPDATE SET
				data = excluded.data,
				version = excluded.version,
				updated_utc = excluded.updated_utc
			WHERE excluded.version > snapshots.version`

		_, err := tx.Exec(query, record.GameID, record.Data, record.Version, record.UpdatedUTC)
		return err
	})
}

// DeleteGame asynchronously removes a game with its moves and snapshot
func (s *Store) DeleteGame(gameID string) error {
	return s.enqueue("game deletion", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		return err
	})
}

// QueryGames retrieves games, optionally filtered by ID and result.
// An empty or "*" filter matches everything.
func (s *Store) QueryGames(gameID, result string) ([]GameRecord, error) {
	query := `SELECT
		game_id, initial_fen, time_ms, increment_ms, delay_ms,
		result, winner, start_time_utc
	FROM games WHERE 1=1`

	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	switch result {
	case "", "*":
	case "ongoing":
		query += " AND result = ''"
	default:
		query += " AND result = ?"
		args = append(args, result)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialFEN, &g.TimeMs, &g.IncrementMs, &g.DelayMs,
			&g.Result, &g.Winner, &g.StartTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return games, nil
}

// QueryMoves lists the plies of a game in order
func (s *Store) QueryMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT
		move_id, game_id, move_number, move, fen_after_move, player_color, move_time_utc
	FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.MoveNumber, &m.Move,
			&m.FENAfterMove, &m.PlayerColor, &m.MoveTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return moves, nil
}

// LoadSnapshots returns the stored state of every unfinished game
// started after since
func (s *Store) LoadSnapshots(since time.Time) ([]SnapshotRecord, error) {
	rows, err := s.db.Query(`SELECT s.game_id, s.data, s.version, s.updated_utc
	FROM snapshots s JOIN games g ON g.game_id = s.game_id
	WHERE g.result = '' AND g.start_time_utc >= ?
	ORDER BY g.start_time_utc`, since)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var snaps []SnapshotRecord
	for rows.Next() {
		var r SnapshotRecord
		if err := rows.Scan(&r.GameID, &r.Data, &r.Version, &r.UpdatedUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		snaps = append(snaps, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return snaps, nil
}
