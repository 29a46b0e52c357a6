package bot

import (
	"github.com/dropfour/backend/internal/domain"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	MEDIUM_DEPTH = 3
	HARD_DEPTH   = 7
)

// DepthForDifficulty maps a difficulty to a search depth. Easy does not use
// the search engine at all.
func DepthForDifficulty(difficulty string) int {
	if difficulty == DifficultyHard {
		return HARD_DEPTH
	}
	return MEDIUM_DEPTH
}

// CalculateBestMove selects the bot's move based on difficulty.
func CalculateBestMove(b *domain.Board, botPlayer domain.PlayerID, difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return CalculateBestMoveEasy(b, botPlayer)
	case DifficultyHard:
		col, _ := NewEngine(botPlayer).BestMove(b, HARD_DEPTH)
		return col
	default:
		col, _ := NewEngine(botPlayer).BestMove(b, MEDIUM_DEPTH)
		return col
	}
}
