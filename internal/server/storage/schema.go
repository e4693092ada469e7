package storage

import "time"

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID       string    `db:"game_id"`
	InitialFEN   string    `db:"initial_fen"`
	TimeMs       int64     `db:"time_ms"`
	IncrementMs  int64     `db:"increment_ms"`
	DelayMs      int64     `db:"delay_ms"`
	Result       string    `db:"result"` // empty while ongoing
	Winner       string    `db:"winner"` // "w", "b" or empty
	StartTimeUTC time.Time `db:"start_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID       int64     `db:"move_id"`
	GameID       string    `db:"game_id"`
	MoveNumber   int       `db:"move_number"`
	Move         string    `db:"move"` // coordinate form, e.g. e7e8q
	FENAfterMove string    `db:"fen_after_move"`
	PlayerColor  string    `db:"player_color"`
	MoveTimeUTC  time.Time `db:"move_time_utc"`
}

// SnapshotRecord holds the latest serialized state of a game
type SnapshotRecord struct {
	GameID     string    `db:"game_id"`
	Data       []byte    `db:"data"`
	Version    int       `db:"version"`
	UpdatedUTC time.Time `db:"updated_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	time_ms INTEGER NOT NULL DEFAULT 0,
	increment_ms INTEGER NOT NULL DEFAULT 0,
	delay_ms INTEGER NOT NULL DEFAULT 0,
	result TEXT NOT NULL DEFAULT '',
	winner TEXT NOT NULL DEFAULT '' CHECK(winner IN ('', 'w', 'b')),
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move TEXT NOT NULL,
	fen_after_move TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE TABLE IF NOT EXISTS snapshots (
	game_id TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	version INTEGER NOT NULL,
	updated_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_result ON games(result);
`
