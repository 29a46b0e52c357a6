package bot

import (
	"math/rand"

	"github.com/dropfour/backend/internal/domain"
)

// CalculateBestMoveEasy takes an immediate win if one exists, blocks the
// opponent's immediate win, and otherwise plays a random legal column.
func CalculateBestMoveEasy(b *domain.Board, botPlayer domain.PlayerID) int {
	cols := b.LegalColumns()
	if len(cols) == 0 {
		return NoColumn
	}

	opponent := domain.Opponent(botPlayer)

	for _, col := range cols {
		test := b.Snapshot()
		test.Drop(col, botPlayer)
		if domain.HasWon(test, botPlayer) {
			return col
		}
	}

	for _, col := range cols {
		test := b.Snapshot()
		test.Drop(col, opponent)
		if domain.HasWon(test, opponent) {
			return col
		}
	}

	return cols[rand.Intn(len(cols))]
}
