package game

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/dropfour/backend/internal/domain"
	"github.com/dropfour/backend/internal/service/bot"
	"github.com/dropfour/backend/pkg/uid"
)

const (
	ModeBot = "bot"
	ModePvp = "pvp"

	ReasonConnectFour = "connect_four"
	ReasonDraw        = "draw"
	ReasonResignation = "resignation"
	ReasonAbandoned   = "abandoned"

	// how long a cached live-game snapshot stays readable
	stateCacheTTL = 24 * time.Hour
)

// GameRecord is a finished game as handed to persistence.
type GameRecord struct {
	GameID          string
	Mode            string
	Difficulty      string
	Winner          int
	Status          string
	Reason          string
	TotalMoves      int
	DurationSeconds int
	CreatedAt       time.Time
	FinishedAt      time.Time
	Board           [][]domain.PlayerID
}

type GameRepository interface {
	SaveGame(record *GameRecord) error
}

// CacheRepository is the optional hot-state store. A nil cache disables it.
type CacheRepository interface {
	SetGameState(ctx context.Context, gameID string, state []byte, ttl time.Duration) error
	DeleteGameState(ctx context.Context, gameID string) error
	RecordBotResult(ctx context.Context, difficulty string, humanWon, draw bool) error
}

// Notifier pushes server events to everyone watching a game.
type Notifier interface {
	Broadcast(gameID string, msg domain.ServerMessage)
}

// GameSession is one live game and its metadata.
type GameSession struct {
	GameID        string
	Mode          string // "bot" or "pvp"
	BotDifficulty string
	BotPiece      domain.PlayerID
	Game          *domain.Game
	Joined        int // pieces claimed so far
	CreatedAt     time.Time
	FinishedAt    time.Time
	Reason        string
	mu            sync.Mutex
}

// StateView is the serialized shape of a session, shared by the HTTP state
// endpoint and the Redis snapshot cache.
type StateView struct {
	GameID      string              `json:"gameId"`
	Mode        string              `json:"mode"`
	Difficulty  string              `json:"difficulty,omitempty"`
	Board       [][]domain.PlayerID `json:"board"`
	CurrentTurn int                 `json:"currentTurn"`
	Status      domain.GameStatus   `json:"status"`
	Winner      int                 `json:"winner"`
	MoveCount   int                 `json:"moveCount"`
	Reason      string              `json:"reason,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// SessionManager manages active game sessions
type SessionManager struct {
	sessions map[string]*GameSession // gameID → session
	mu       sync.RWMutex
	repo     GameRepository
	cache    CacheRepository
}

func NewSessionManager(repo GameRepository, cache CacheRepository) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*GameSession),
		repo:     repo,
		cache:    cache,
	}
}

// CreateBotSession starts a human-vs-bot game. The human is always Player1.
func (sm *SessionManager) CreateBotSession(difficulty string) *GameSession {
	gs := &GameSession{
		GameID:        uid.GenerateGameID(),
		Mode:          ModeBot,
		BotDifficulty: difficulty,
		BotPiece:      domain.Player2,
		Game:          domain.NewGame(),
		Joined:        1,
		CreatedAt:     time.Now(),
	}

	sm.register(gs)
	log.Printf("[SESSION] Created bot session %s (difficulty: %s)", gs.GameID, difficulty)
	return gs
}

// CreatePvpSession starts a two-player game with only Player1 present.
func (sm *SessionManager) CreatePvpSession() *GameSession {
	gs := &GameSession{
		GameID:    uid.GenerateGameID(),
		Mode:      ModePvp,
		Game:      domain.NewGame(),
		Joined:    1,
		CreatedAt: time.Now(),
	}

	sm.register(gs)
	log.Printf("[SESSION] Created pvp session %s, waiting for opponent", gs.GameID)
	return gs
}

func (sm *SessionManager) register(gs *GameSession) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[gs.GameID] = gs
	sm.cacheState(gs)
}

// JoinSession claims the Player2 seat of an open pvp game.
func (sm *SessionManager) JoinSession(gameID string) (*GameSession, error) {
	gs, exists := sm.GetSessionByGameID(gameID)
	if !exists {
		return nil, domain.ErrInvalidMove
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Mode != ModePvp || gs.Joined >= 2 {
		return nil, domain.ErrGameFull
	}
	gs.Joined = 2
	log.Printf("[SESSION] Player joined session %s", gameID)
	return gs, nil
}

func (sm *SessionManager) GetSessionByGameID(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	gs, exists := sm.sessions[gameID]
	return gs, exists
}

// HandleMove applies piece's move in column and, in a bot game, plays the
// bot's reply before returning. The returned view reflects both moves.
func (sm *SessionManager) HandleMove(gameID string, piece domain.PlayerID, column int, notifier Notifier) (*StateView, error) {
	gs, exists := sm.GetSessionByGameID(gameID)
	if !exists {
		return nil, domain.ErrInvalidMove
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Mode == ModeBot && piece == gs.BotPiece {
		return nil, domain.ErrNotYourTurn
	}
	if gs.Mode == ModePvp && gs.Joined < 2 {
		return nil, domain.ErrNotYourTurn
	}

	row, err := gs.Game.MakeMove(piece, column)
	if err != nil {
		return nil, err
	}
	sm.broadcastMove(gs, piece, column, row, notifier)

	if gs.Game.IsFinished() {
		sm.finishLocked(gs, reasonFor(gs.Game), notifier)
		sm.cacheState(gs)
		return gs.viewLocked(), nil
	}

	if gs.Mode == ModeBot {
		botCol := bot.CalculateBestMove(gs.Game.Board, gs.BotPiece, gs.BotDifficulty)
		if botCol != bot.NoColumn {
			botRow, err := gs.Game.MakeMove(gs.BotPiece, botCol)
			if err != nil {
				log.Printf("[BOT] Error applying bot move in game %s: %v", gs.GameID, err)
			} else {
				sm.broadcastMove(gs, gs.BotPiece, botCol, botRow, notifier)
			}
		}
		if gs.Game.IsFinished() {
			sm.finishLocked(gs, reasonFor(gs.Game), notifier)
		}
	}

	sm.cacheState(gs)
	return gs.viewLocked(), nil
}

// Hint runs the search engine for piece on the current position and returns
// the suggested column with its score. Read-only: the live board is only
// snapshotted.
func (sm *SessionManager) Hint(gameID string, piece domain.PlayerID, depth int) (int, float64, error) {
	gs, exists := sm.GetSessionByGameID(gameID)
	if !exists {
		return bot.NoColumn, 0, domain.ErrInvalidMove
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		return bot.NoColumn, 0, domain.ErrGameFinished
	}

	col, score := bot.NewEngine(piece).BestMove(gs.Game.Board.Snapshot(), depth)
	return col, score, nil
}

// Resign ends the game in the opponent's favor.
func (sm *SessionManager) Resign(gameID string, piece domain.PlayerID, notifier Notifier) error {
	gs, exists := sm.GetSessionByGameID(gameID)
	if !exists {
		return domain.ErrInvalidMove
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		return domain.ErrGameFinished
	}

	gs.Game.Status = domain.StatusWon
	gs.Game.Winner = domain.Opponent(piece)
	sm.finishLocked(gs, ReasonResignation, notifier)
	sm.cacheState(gs)
	return nil
}

// View returns a read-only snapshot of the session state.
func (gs *GameSession) View() *StateView {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.viewLocked()
}

func (gs *GameSession) viewLocked() *StateView {
	return &StateView{
		GameID:      gs.GameID,
		Mode:        gs.Mode,
		Difficulty:  gs.BotDifficulty,
		Board:       gs.Game.Board.Cells(),
		CurrentTurn: int(gs.Game.CurrentPlayer),
		Status:      gs.Game.Status,
		Winner:      int(gs.Game.Winner),
		MoveCount:   gs.Game.MoveCount,
		Reason:      gs.Reason,
		CreatedAt:   gs.CreatedAt,
	}
}

// ActiveGames lists sessions still in progress, for the watch endpoint.
func (sm *SessionManager) ActiveGames() []*StateView {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	views := make([]*StateView, 0, len(sm.sessions))
	for _, gs := range sm.sessions {
		if !gs.Game.IsFinished() {
			views = append(views, gs.View())
		}
	}
	return views
}

func (sm *SessionManager) broadcastMove(gs *GameSession, piece domain.PlayerID, column, row int, notifier Notifier) {
	if notifier == nil {
		return
	}
	notifier.Broadcast(gs.GameID, domain.ServerMessage{
		Type:        "move",
		GameID:      gs.GameID,
		Player:      int(piece),
		Column:      column,
		Row:         row,
		CurrentTurn: int(gs.Game.CurrentPlayer),
		Status:      string(gs.Game.Status),
	})
}

// finishLocked records the outcome. Caller holds gs.mu.
func (sm *SessionManager) finishLocked(gs *GameSession, reason string, notifier Notifier) {
	gs.FinishedAt = time.Now()
	gs.Reason = reason

	log.Printf("[GAME] Game %s finished: %s (winner: %d, moves: %d)",
		gs.GameID, reason, gs.Game.Winner, gs.Game.MoveCount)

	if notifier != nil {
		notifier.Broadcast(gs.GameID, domain.ServerMessage{
			Type:   "game_over",
			GameID: gs.GameID,
			Winner: int(gs.Game.Winner),
			Status: string(gs.Game.Status),
			Reason: reason,
			Board:  gs.Game.Board.Cells(),
		})
	}

	sm.saveGameAsync(gs.record())

	if sm.cache != nil && gs.Mode == ModeBot {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		humanWon := gs.Game.Status == domain.StatusWon && gs.Game.Winner != gs.BotPiece
		draw := gs.Game.Status == domain.StatusDraw
		if err := sm.cache.RecordBotResult(ctx, gs.BotDifficulty, humanWon, draw); err != nil {
			log.Printf("[CACHE] Error recording bot result for game %s: %v", gs.GameID, err)
		}
	}
}

// record builds the persistence row. Caller holds gs.mu.
func (gs *GameSession) record() *GameRecord {
	return &GameRecord{
		GameID:          gs.GameID,
		Mode:            gs.Mode,
		Difficulty:      gs.BotDifficulty,
		Winner:          int(gs.Game.Winner),
		Status:          string(gs.Game.Status),
		Reason:          gs.Reason,
		TotalMoves:      gs.Game.MoveCount,
		DurationSeconds: int(gs.FinishedAt.Sub(gs.CreatedAt).Seconds()),
		CreatedAt:       gs.CreatedAt,
		FinishedAt:      gs.FinishedAt,
		Board:           gs.Game.Board.Cells(),
	}
}

// Saves game data in the background to avoid blocking game_over delivery.
func (sm *SessionManager) saveGameAsync(record *GameRecord) {
	if sm.repo == nil {
		return
	}
	go func() {
		if err := sm.repo.SaveGame(record); err != nil {
			log.Printf("[GAME] Error saving game %s: %v", record.GameID, err)
		} else {
			log.Printf("[GAME] Game %s saved successfully", record.GameID)
		}
	}()
}

func (sm *SessionManager) cacheState(gs *GameSession) {
	if sm.cache == nil {
		return
	}
	payload, err := json.Marshal(gs.viewLocked())
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sm.cache.SetGameState(ctx, gs.GameID, payload, stateCacheTTL); err != nil {
		log.Printf("[CACHE] Error caching state for game %s: %v", gs.GameID, err)
	}
}

// CleanupOldSessions drops finished sessions older than an hour and stale
// active sessions older than a day. Returns how many were removed.
func (sm *SessionManager) CleanupOldSessions() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	count := 0
	now := time.Now()

	for gameID, gs := range sm.sessions {
		stale := false
		if gs.Game.IsFinished() {
			stale = now.Sub(gs.FinishedAt) > 1*time.Hour
		} else {
			stale = now.Sub(gs.CreatedAt) > 24*time.Hour
		}
		if stale {
			delete(sm.sessions, gameID)
			if sm.cache != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				sm.cache.DeleteGameState(ctx, gameID)
				cancel()
			}
			count++
		}
	}

	if count > 0 {
		log.Printf("[SESSION] Memory cleanup: removed %d stale game sessions", count)
	}
	return count
}

func reasonFor(g *domain.Game) string {
	if g.Status == domain.StatusDraw {
		return ReasonDraw
	}
	return ReasonConnectFour
}
