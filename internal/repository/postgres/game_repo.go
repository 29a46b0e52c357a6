package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropfour/backend/internal/service/game"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// GameRow is a finished game as read back from the database.
type GameRow struct {
	GameID          string          `json:"gameId"`
	Mode            string          `json:"mode"`
	Difficulty      string          `json:"difficulty,omitempty"`
	Winner          int             `json:"winner"`
	Status          string          `json:"status"`
	Reason          string          `json:"reason"`
	TotalMoves      int             `json:"totalMoves"`
	DurationSeconds int             `json:"durationSeconds"`
	CreatedAt       time.Time       `json:"createdAt"`
	FinishedAt      time.Time       `json:"finishedAt"`
	Board           json.RawMessage `json:"board,omitempty"`
}

// SaveGame upserts a finished game record. UPSERT handles the rare case of
// the same game finishing twice (e.g. resignation racing the final move).
func (r *GameRepo) SaveGame(record *game.GameRecord) error {
	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %v", err)
	}

	query := `
	INSERT INTO game (game_id, mode, difficulty, winner, status, reason, total_moves, duration_seconds, created_at, finished_at, board_state)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (game_id) DO UPDATE SET
		winner = EXCLUDED.winner,
		status = EXCLUDED.status,
		reason = EXCLUDED.reason,
		total_moves = EXCLUDED.total_moves,
		duration_seconds = EXCLUDED.duration_seconds,
		finished_at = EXCLUDED.finished_at,
		board_state = EXCLUDED.board_state;
	`

	_, err = r.DB.Exec(query, record.GameID, record.Mode, record.Difficulty,
		record.Winner, record.Status, record.Reason, record.TotalMoves,
		record.DurationSeconds, record.CreatedAt, record.FinishedAt, boardJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %v", err)
	}
	return nil
}

// GetGameByID retrieves one finished game, including its final board.
func (r *GameRepo) GetGameByID(gameID string) (*GameRow, error) {
	query := `
	SELECT game_id, mode, difficulty, winner, status, reason, total_moves, duration_seconds, created_at, finished_at, board_state
	FROM game
	WHERE game_id = $1;
	`

	var row GameRow
	var board []byte
	err := r.DB.QueryRow(query, gameID).Scan(
		&row.GameID, &row.Mode, &row.Difficulty, &row.Winner, &row.Status,
		&row.Reason, &row.TotalMoves, &row.DurationSeconds,
		&row.CreatedAt, &row.FinishedAt, &board,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game %s: %v", gameID, err)
	}
	row.Board = board
	return &row, nil
}

// GetRecentGames lists the most recently finished games, newest first.
func (r *GameRepo) GetRecentGames(limit int) ([]GameRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
	SELECT game_id, mode, difficulty, winner, status, reason, total_moves, duration_seconds, created_at, finished_at
	FROM game
	ORDER BY finished_at DESC
	LIMIT $1;
	`

	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent games: %v", err)
	}
	defer rows.Close()

	games := []GameRow{}
	for rows.Next() {
		var row GameRow
		if err := rows.Scan(
			&row.GameID, &row.Mode, &row.Difficulty, &row.Winner, &row.Status,
			&row.Reason, &row.TotalMoves, &row.DurationSeconds,
			&row.CreatedAt, &row.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %v", err)
		}
		games = append(games, row)
	}
	return games, rows.Err()
}

// DeleteGamesOlderThan prunes finished games past the retention window.
func (r *GameRepo) DeleteGamesOlderThan(days int) (int64, error) {
	query := `DELETE FROM game WHERE finished_at < NOW() - ($1 || ' days')::interval;`

	res, err := r.DB.Exec(query, days)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old games: %v", err)
	}
	return res.RowsAffected()
}
