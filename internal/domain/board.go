package domain

// Board is the rows×columns grid of cell states. Row 0 is the bottom row, so
// the gravity invariant reads: a non-empty cell at (r, c) implies every cell
// below it in column c (rows 0..r-1) is also non-empty.
type Board struct {
	rows  int
	cols  int
	cells [][]PlayerID
}

// NewBoard creates an empty board with the default 6×7 dimensions.
func NewBoard() *Board {
	return NewBoardSize(DefaultRows, DefaultColumns)
}

// NewBoardSize creates an empty rows×cols board.
func NewBoardSize(rows, cols int) *Board {
	cells := make([][]PlayerID, rows)
	for r := range cells {
		cells[r] = make([]PlayerID, cols)
	}
	return &Board{rows: rows, cols: cols, cells: cells}
}

func (b *Board) Rows() int    { return b.rows }
func (b *Board) Columns() int { return b.cols }

// Cell returns the state of the cell at (row, col), row 0 = bottom.
func (b *Board) Cell(row, col int) PlayerID {
	return b.cells[row][col]
}

// IsValidColumn reports whether col is a real column index.
func (b *Board) IsValidColumn(col int) bool {
	return col >= 0 && col < b.cols
}

// IsColumnPlayable reports whether the topmost cell of col is still empty.
func (b *Board) IsColumnPlayable(col int) bool {
	if !b.IsValidColumn(col) {
		return false
	}
	return b.cells[b.rows-1][col] == Empty
}

// NextOpenRow returns the lowest empty row of col, or -1 if the column is
// full. Only meaningful when IsColumnPlayable(col) holds.
func (b *Board) NextOpenRow(col int) int {
	for row := 0; row < b.rows; row++ {
		if b.cells[row][col] == Empty {
			return row
		}
	}
	return -1
}

// Drop places p in the lowest empty row of col and returns that row.
// Fails with ErrColumnFull when the column has no open cell.
func (b *Board) Drop(col int, p PlayerID) (int, error) {
	for row := 0; row < b.rows; row++ {
		if b.cells[row][col] == Empty {
			b.cells[row][col] = p
			return row, nil
		}
	}
	return -1, ErrColumnFull
}

// LegalColumns returns every playable column in ascending order.
// An empty result means the board is full.
func (b *Board) LegalColumns() []int {
	cols := []int{}
	for col := 0; col < b.cols; col++ {
		if b.cells[b.rows-1][col] == Empty {
			cols = append(cols, col)
		}
	}
	return cols
}

// IsFull reports whether no column is playable.
func (b *Board) IsFull() bool {
	for col := 0; col < b.cols; col++ {
		if b.cells[b.rows-1][col] == Empty {
			return false
		}
	}
	return true
}

// Snapshot returns a fully independent deep copy, used by the search engine
// to branch without mutating the live board.
func (b *Board) Snapshot() *Board {
	cells := make([][]PlayerID, b.rows)
	for r := range b.cells {
		cells[r] = make([]PlayerID, b.cols)
		copy(cells[r], b.cells[r])
	}
	return &Board{rows: b.rows, cols: b.cols, cells: cells}
}

// Cells returns a deep copy of the grid contents for serialization.
func (b *Board) Cells() [][]PlayerID {
	return b.Snapshot().cells
}

// CountInColumn returns the number of p pieces in col.
func (b *Board) CountInColumn(col int, p PlayerID) int {
	count := 0
	for row := 0; row < b.rows; row++ {
		if b.cells[row][col] == p {
			count++
		}
	}
	return count
}
