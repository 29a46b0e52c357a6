package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameStartsActive(t *testing.T) {
	g := NewGame()
	assert.Equal(t, StatusActive, g.Status)
	assert.Equal(t, Player1, g.CurrentPlayer)
	assert.Equal(t, Empty, g.Winner)
}

func TestMakeMoveAlternatesTurns(t *testing.T) {
	g := NewGame()

	row, err := g.MakeMove(Player1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, row)
	assert.Equal(t, Player2, g.CurrentPlayer)

	_, err = g.MakeMove(Player1, 3)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = g.MakeMove(Player2, 3)
	require.NoError(t, err)
	assert.Equal(t, Player1, g.CurrentPlayer)
	assert.Equal(t, 2, g.MoveCount)
}

func TestMakeMoveRejectsBadColumns(t *testing.T) {
	g := NewGame()

	_, err := g.MakeMove(Player1, -1)
	assert.ErrorIs(t, err, ErrInvalidMove)

	_, err = g.MakeMove(Player1, 7)
	assert.ErrorIs(t, err, ErrInvalidMove)

	for i := 0; i < DefaultRows/2; i++ {
		_, err = g.MakeMove(Player1, 0)
		require.NoError(t, err)
		_, err = g.MakeMove(Player2, 0)
		require.NoError(t, err)
	}
	_, err = g.MakeMove(Player1, 0)
	assert.ErrorIs(t, err, ErrColumnFull)
}

func TestMakeMoveDetectsWin(t *testing.T) {
	g := NewGame()

	// Player1 builds a vertical four in column 0
	for i := 0; i < 3; i++ {
		_, err := g.MakeMove(Player1, 0)
		require.NoError(t, err)
		_, err = g.MakeMove(Player2, 1)
		require.NoError(t, err)
	}
	_, err := g.MakeMove(Player1, 0)
	require.NoError(t, err)

	assert.Equal(t, StatusWon, g.Status)
	assert.Equal(t, Player1, g.Winner)
	assert.True(t, g.IsFinished())

	_, err = g.MakeMove(Player2, 2)
	assert.ErrorIs(t, err, ErrGameFinished)
}

func TestMakeMoveDetectsDraw(t *testing.T) {
	b := fullDrawBoard()
	// reopen the top-right cell and replay the final move
	b.cells[b.rows-1][b.cols-1] = Empty

	g := &Game{Board: b, CurrentPlayer: Player2, Status: StatusActive}

	_, err := g.MakeMove(Player2, b.cols-1)
	require.NoError(t, err)
	assert.Equal(t, StatusDraw, g.Status)
	assert.Equal(t, Empty, g.Winner)
	assert.True(t, g.IsFinished())
}
