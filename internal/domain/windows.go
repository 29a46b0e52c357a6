package domain

// ForEachWindow calls fn with every length-ToWin straight-line run of cells,
// in a fixed order: horizontal windows row by row, then vertical, then the
// up-right diagonals, then the down-right diagonals. The slice passed to fn is
// reused between calls and must not be retained. fn returning false stops the
// enumeration.
//
// Win detection and heuristic scoring both run over exactly this enumeration.
func (b *Board) ForEachWindow(fn func(w []PlayerID) bool) {
	var w [ToWin]PlayerID

	// horizontal
	for r := 0; r < b.rows; r++ {
		for c := 0; c+ToWin <= b.cols; c++ {
			for i := 0; i < ToWin; i++ {
				w[i] = b.cells[r][c+i]
			}
			if !fn(w[:]) {
				return
			}
		}
	}

	// vertical
	for r := 0; r+ToWin <= b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			for i := 0; i < ToWin; i++ {
				w[i] = b.cells[r+i][c]
			}
			if !fn(w[:]) {
				return
			}
		}
	}

	// diagonal up-right
	for r := 0; r+ToWin <= b.rows; r++ {
		for c := 0; c+ToWin <= b.cols; c++ {
			for i := 0; i < ToWin; i++ {
				w[i] = b.cells[r+i][c+i]
			}
			if !fn(w[:]) {
				return
			}
		}
	}

	// diagonal down-right
	for r := ToWin - 1; r < b.rows; r++ {
		for c := 0; c+ToWin <= b.cols; c++ {
			for i := 0; i < ToWin; i++ {
				w[i] = b.cells[r-i][c+i]
			}
			if !fn(w[:]) {
				return
			}
		}
	}
}
