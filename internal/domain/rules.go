package domain

// HasWon reports whether p occupies a complete length-ToWin window anywhere on
// the board. A window that is partially occupied or contains the opposing
// piece never counts.
func HasWon(b *Board, p PlayerID) bool {
	won := false
	b.ForEachWindow(func(w []PlayerID) bool {
		for _, cell := range w {
			if cell != p {
				return true
			}
		}
		won = true
		return false
	})
	return won
}

// IsTerminal reports whether the position is over: either side has won, or
// the board is full with no winner (a draw).
func IsTerminal(b *Board) bool {
	return HasWon(b, Player1) || HasWon(b, Player2) || b.IsFull()
}
