package domain

// Game is the explicit turn state machine over a board: it enforces turn
// order and move legality, and transitions from active to won or draw.
type Game struct {
	Board         *Board
	CurrentPlayer PlayerID
	Status        GameStatus
	Winner        PlayerID
	MoveCount     int
}

func NewGame() *Game {
	return &Game{
		Board:         NewBoard(),
		CurrentPlayer: Player1,
		Status:        StatusActive,
		Winner:        Empty,
		MoveCount:     0,
	}
}

// MakeMove applies player's move in column and returns the row the piece
// settled in. The out-of-range check happens here, at the boundary, so the
// board's drop never sees an invalid index.
func (g *Game) MakeMove(player PlayerID, column int) (int, error) {
	if g.Status != StatusActive {
		return -1, ErrGameFinished
	}

	if player != g.CurrentPlayer {
		return -1, ErrNotYourTurn
	}

	if !g.Board.IsValidColumn(column) {
		return -1, ErrInvalidMove
	}

	row, err := g.Board.Drop(column, player)
	if err != nil {
		return -1, err
	}

	g.MoveCount++

	if HasWon(g.Board, player) {
		g.Status = StatusWon
		g.Winner = player
		return row, nil
	}

	if g.Board.IsFull() {
		g.Status = StatusDraw
		return row, nil
	}

	g.CurrentPlayer = Opponent(player)

	return row, nil
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusWon || g.Status == StatusDraw
}
