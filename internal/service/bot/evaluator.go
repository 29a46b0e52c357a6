package bot

import (
	"github.com/dropfour/backend/internal/domain"
)

const (
	// Per-window score table
	WINDOW_WIN   = 100 // all four cells are ours
	WINDOW_THREE = 5   // three of ours plus one empty
	WINDOW_TWO   = 2   // two of ours plus two empties
	WINDOW_BLOCK = -80 // opponent has three plus one empty

	CENTER_WEIGHT = 3 // per own piece in the exact center column
)

// ScoreWindow scores a single length-four window from the fixed perspective
// of p. The opponent-threat penalty is independent of the own-count rows of
// the table; with a window of four they cannot fire together.
func ScoreWindow(w []domain.PlayerID, p domain.PlayerID) float64 {
	opp := domain.Opponent(p)

	own, empty, theirs := 0, 0, 0
	for _, cell := range w {
		switch cell {
		case p:
			own++
		case opp:
			theirs++
		default:
			empty++
		}
	}

	score := 0.0
	switch {
	case own == domain.ToWin:
		score += WINDOW_WIN
	case own == domain.ToWin-1 && empty == 1:
		score += WINDOW_THREE
	case own == domain.ToWin-2 && empty == 2:
		score += WINDOW_TWO
	}

	if theirs == domain.ToWin-1 && empty == 1 {
		score += WINDOW_BLOCK
	}

	return score
}

// ScorePosition is the heuristic value of a non-terminal position for p:
// a center-column bonus plus the sum of ScoreWindow over every window the
// board enumerates. Callers score every leaf of one search for the same p.
func ScorePosition(b *domain.Board, p domain.PlayerID) float64 {
	score := float64(CENTER_WEIGHT * b.CountInColumn(b.Columns()/2, p))

	b.ForEachWindow(func(w []domain.PlayerID) bool {
		score += ScoreWindow(w, p)
		return true
	})

	return score
}
