package bot

import (
	"math"

	"github.com/dropfour/backend/internal/domain"
)

// NoColumn is the column result at a search leaf, where no move is chosen.
const NoColumn = -1

const (
	// A win for the maximizing piece is worth an order of magnitude more
	// than a win for the minimizing piece costs. The asymmetry biases the
	// engine toward taking its own win when a win and a loss-avoidance are
	// both on the table.
	MINIMAX_WIN  = 1e14
	MINIMAX_LOSS = -1e13
	MINIMAX_DRAW = 0
)

// Engine is a depth-bounded minimax search with alpha-beta pruning. The two
// piece identities are fixed at construction; leaf positions are always
// scored for MaxPiece regardless of whose turn the leaf is.
type Engine struct {
	MaxPiece domain.PlayerID
	MinPiece domain.PlayerID
}

func NewEngine(maxPiece domain.PlayerID) *Engine {
	return &Engine{MaxPiece: maxPiece, MinPiece: domain.Opponent(maxPiece)}
}

// Search returns the chosen column and its score for the position. The board
// is never mutated: every branch drops into its own snapshot. Terminal
// positions and exhausted depth return NoColumn with the leaf value.
//
// Ties between columns resolve to the earliest legal column examined: the
// running best is seeded with the lowest legal index and replaced only on a
// strict improvement.
func (e *Engine) Search(b *domain.Board, depth int, alpha, beta float64, maximizing bool) (int, float64) {
	if domain.HasWon(b, e.MaxPiece) {
		return NoColumn, MINIMAX_WIN
	}
	if domain.HasWon(b, e.MinPiece) {
		return NoColumn, MINIMAX_LOSS
	}

	cols := b.LegalColumns()
	if len(cols) == 0 {
		return NoColumn, MINIMAX_DRAW
	}

	if depth == 0 {
		return NoColumn, ScorePosition(b, e.MaxPiece)
	}

	bestCol := cols[0]

	if maximizing {
		best := math.Inf(-1)
		for _, col := range cols {
			child := b.Snapshot()
			child.Drop(col, e.MaxPiece)

			_, score := e.Search(child, depth-1, alpha, beta, false)
			if score > best {
				best = score
				bestCol = col
			}

			alpha = math.Max(alpha, best)
			if alpha >= beta {
				break // beta cutoff
			}
		}
		return bestCol, best
	}

	best := math.Inf(1)
	for _, col := range cols {
		child := b.Snapshot()
		child.Drop(col, e.MinPiece)

		_, score := e.Search(child, depth-1, alpha, beta, true)
		if score < best {
			best = score
			bestCol = col
		}

		beta = math.Min(beta, best)
		if alpha >= beta {
			break // alpha cutoff
		}
	}
	return bestCol, best
}

// BestMove runs a full-window search for the engine's maximizing piece.
func (e *Engine) BestMove(b *domain.Board, depth int) (int, float64) {
	return e.Search(b, depth, math.Inf(-1), math.Inf(1), true)
}
