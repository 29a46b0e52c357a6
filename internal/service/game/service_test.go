package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dropfour/backend/internal/domain"
	"github.com/dropfour/backend/internal/service/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu      sync.Mutex
	records []*GameRecord
	saved   chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(chan struct{}, 8)}
}

func (r *fakeRepo) SaveGame(record *GameRecord) error {
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	r.saved <- struct{}{}
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []domain.ServerMessage
}

func (n *fakeNotifier) Broadcast(gameID string, msg domain.ServerMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Type)
	}
	return out
}

func TestCreateBotSession(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	gs := sm.CreateBotSession(bot.DifficultyHard)

	assert.NotEmpty(t, gs.GameID)
	assert.Equal(t, ModeBot, gs.Mode)
	assert.Equal(t, domain.Player2, gs.BotPiece)

	got, exists := sm.GetSessionByGameID(gs.GameID)
	require.True(t, exists)
	assert.Same(t, gs, got)
}

func TestHandleMoveBotReplies(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	gs := sm.CreateBotSession(bot.DifficultyMedium)
	n := &fakeNotifier{}

	view, err := sm.HandleMove(gs.GameID, domain.Player1, 3, n)
	require.NoError(t, err)

	// human move plus the bot's reply
	assert.Equal(t, 2, view.MoveCount)
	assert.Equal(t, int(domain.Player1), view.CurrentTurn)
	assert.Equal(t, []string{"move", "move"}, n.types())
}

func TestHandleMoveRejectsBotPiece(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	gs := sm.CreateBotSession(bot.DifficultyEasy)

	_, err := sm.HandleMove(gs.GameID, domain.Player2, 0, nil)
	assert.ErrorIs(t, err, domain.ErrNotYourTurn)
}

func TestPvpSessionJoinAndPlay(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	gs := sm.CreatePvpSession()

	// moves before the second player joins are rejected
	_, err := sm.HandleMove(gs.GameID, domain.Player1, 0, nil)
	assert.ErrorIs(t, err, domain.ErrNotYourTurn)

	_, err = sm.JoinSession(gs.GameID)
	require.NoError(t, err)

	_, err = sm.JoinSession(gs.GameID)
	assert.ErrorIs(t, err, domain.ErrGameFull)

	view, err := sm.HandleMove(gs.GameID, domain.Player1, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int(domain.Player2), view.CurrentTurn)

	_, err = sm.HandleMove(gs.GameID, domain.Player1, 1, nil)
	assert.ErrorIs(t, err, domain.ErrNotYourTurn)
}

func TestPvpWinPersistsRecord(t *testing.T) {
	repo := newFakeRepo()
	sm := NewSessionManager(repo, nil)
	n := &fakeNotifier{}

	gs := sm.CreatePvpSession()
	_, err := sm.JoinSession(gs.GameID)
	require.NoError(t, err)

	// Player1 stacks column 0, Player2 wanders
	for i := 0; i < 3; i++ {
		_, err = sm.HandleMove(gs.GameID, domain.Player1, 0, n)
		require.NoError(t, err)
		_, err = sm.HandleMove(gs.GameID, domain.Player2, 1+i, n)
		require.NoError(t, err)
	}
	view, err := sm.HandleMove(gs.GameID, domain.Player1, 0, n)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusWon, view.Status)
	assert.Equal(t, int(domain.Player1), view.Winner)
	assert.Equal(t, ReasonConnectFour, view.Reason)
	assert.Contains(t, n.types(), "game_over")

	select {
	case <-repo.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("finished game was not persisted")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.records, 1)
	assert.Equal(t, gs.GameID, repo.records[0].GameID)
	assert.Equal(t, 7, repo.records[0].TotalMoves)
}

func TestHint(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	gs := sm.CreatePvpSession()
	_, err := sm.JoinSession(gs.GameID)
	require.NoError(t, err)

	// Player1 threatens columns 1..3 on the bottom row
	_, err = sm.HandleMove(gs.GameID, domain.Player1, 1, nil)
	require.NoError(t, err)
	_, err = sm.HandleMove(gs.GameID, domain.Player2, 1, nil)
	require.NoError(t, err)
	_, err = sm.HandleMove(gs.GameID, domain.Player1, 2, nil)
	require.NoError(t, err)
	_, err = sm.HandleMove(gs.GameID, domain.Player2, 2, nil)
	require.NoError(t, err)
	_, err = sm.HandleMove(gs.GameID, domain.Player1, 3, nil)
	require.NoError(t, err)

	col, score, err := sm.Hint(gs.GameID, domain.Player1, 2)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 4}, col)
	assert.Equal(t, float64(bot.MINIMAX_WIN), score)
}

func TestResign(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	n := &fakeNotifier{}
	gs := sm.CreatePvpSession()
	_, err := sm.JoinSession(gs.GameID)
	require.NoError(t, err)

	require.NoError(t, sm.Resign(gs.GameID, domain.Player1, n))

	view := gs.View()
	assert.Equal(t, domain.StatusWon, view.Status)
	assert.Equal(t, int(domain.Player2), view.Winner)
	assert.Equal(t, ReasonResignation, view.Reason)

	assert.ErrorIs(t, sm.Resign(gs.GameID, domain.Player1, n), domain.ErrGameFinished)
}

func TestCleanupOldSessions(t *testing.T) {
	sm := NewSessionManager(nil, nil)

	fresh := sm.CreatePvpSession()
	stale := sm.CreatePvpSession()
	stale.CreatedAt = time.Now().Add(-25 * time.Hour)

	finished := sm.CreatePvpSession()
	finished.Game.Status = domain.StatusDraw
	finished.FinishedAt = time.Now().Add(-2 * time.Hour)

	removed := sm.CleanupOldSessions()
	assert.Equal(t, 2, removed)

	_, exists := sm.GetSessionByGameID(fresh.GameID)
	assert.True(t, exists)
	_, exists = sm.GetSessionByGameID(stale.GameID)
	assert.False(t, exists)
	_, exists = sm.GetSessionByGameID(finished.GameID)
	assert.False(t, exists)
}

type fakeCache struct {
	mu      sync.Mutex
	states  map[string][]byte
	results []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{states: make(map[string][]byte)}
}

func (c *fakeCache) SetGameState(ctx context.Context, gameID string, state []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[gameID] = state
	return nil
}

func (c *fakeCache) DeleteGameState(ctx context.Context, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, gameID)
	return nil
}

func (c *fakeCache) RecordBotResult(ctx context.Context, difficulty string, humanWon, draw bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, difficulty)
	return nil
}

func TestBotGameUpdatesCache(t *testing.T) {
	cache := newFakeCache()
	sm := NewSessionManager(nil, cache)
	gs := sm.CreateBotSession(bot.DifficultyEasy)

	_, err := sm.HandleMove(gs.GameID, domain.Player1, 3, nil)
	require.NoError(t, err)

	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Contains(t, cache.states, gs.GameID)
}
