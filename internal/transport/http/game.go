package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dropfour/backend/internal/domain"
	redisrepo "github.com/dropfour/backend/internal/repository/redis"
	"github.com/dropfour/backend/internal/service/bot"
	"github.com/dropfour/backend/internal/service/game"
	"github.com/dropfour/backend/internal/transport/http/middleware"
	"github.com/dropfour/backend/pkg/auth"
)

type GameHandler struct {
	Sessions     *game.SessionManager
	Tokens       *auth.TokenIssuer
	Notifier     game.Notifier
	Cache        *redisrepo.Cache // optional read-through for evicted sessions
	HintMaxDepth int
}

func NewGameHandler(sm *game.SessionManager, tokens *auth.TokenIssuer, notifier game.Notifier, cache *redisrepo.Cache, hintMaxDepth int) *GameHandler {
	if hintMaxDepth <= 0 {
		hintMaxDepth = bot.HARD_DEPTH
	}
	return &GameHandler{
		Sessions:     sm,
		Tokens:       tokens,
		Notifier:     notifier,
		Cache:        cache,
		HintMaxDepth: hintMaxDepth,
	}
}

type createGameRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

type seatResponse struct {
	GameID      string          `json:"gameId"`
	PlayerToken string          `json:"playerToken"`
	YourPlayer  int             `json:"yourPlayer"`
	State       *game.StateView `json:"state"`
}

// CreateGame starts a new game and returns the Player1 seat token.
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var gs *game.GameSession
	switch req.Mode {
	case game.ModePvp:
		gs = h.Sessions.CreatePvpSession()
	case game.ModeBot, "":
		difficulty := req.Difficulty
		switch difficulty {
		case bot.DifficultyEasy, bot.DifficultyMedium, bot.DifficultyHard:
		case "":
			difficulty = bot.DifficultyMedium
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown difficulty"})
			return
		}
		gs = h.Sessions.CreateBotSession(difficulty)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode"})
		return
	}

	token, err := h.Tokens.IssuePlayerToken(gs.GameID, domain.Player1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, seatResponse{
		GameID:      gs.GameID,
		PlayerToken: token,
		YourPlayer:  int(domain.Player1),
		State:       gs.View(),
	})
}

// JoinGame claims the Player2 seat of an open pvp game.
func (h *GameHandler) JoinGame(c *gin.Context) {
	gameID := c.Param("id")

	if _, exists := h.Sessions.GetSessionByGameID(gameID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	gs, err := h.Sessions.JoinSession(gameID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	token, err := h.Tokens.IssuePlayerToken(gs.GameID, domain.Player2)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, seatResponse{
		GameID:      gs.GameID,
		PlayerToken: token,
		YourPlayer:  int(domain.Player2),
		State:       gs.View(),
	})
}

// GetGame returns the current state of a game. Sessions evicted from memory
// are served from the Redis snapshot cache when available.
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.Param("id")

	if gs, exists := h.Sessions.GetSessionByGameID(gameID); exists {
		c.JSON(http.StatusOK, gs.View())
		return
	}

	if h.Cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if payload, err := h.Cache.GetGameState(ctx, gameID); err == nil && payload != nil {
			c.Data(http.StatusOK, "application/json", payload)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
}

// ListGames returns all in-progress games, for spectating.
func (h *GameHandler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.Sessions.ActiveGames())
}

type moveRequest struct {
	Column int `json:"column"`
}

// MakeMove applies the authenticated player's move.
func (h *GameHandler) MakeMove(c *gin.Context) {
	gameID, piece, ok := h.seatFromContext(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.Sessions.HandleMove(gameID, piece, req.Column, h.Notifier)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

type hintResponse struct {
	Column int     `json:"column"`
	Score  float64 `json:"score"`
	Depth  int     `json:"depth"`
}

// Hint runs the search engine for the authenticated player's piece.
func (h *GameHandler) Hint(c *gin.Context) {
	gameID, piece, ok := h.seatFromContext(c)
	if !ok {
		return
	}

	depth := bot.MEDIUM_DEPTH
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid depth"})
			return
		}
		depth = parsed
	}
	if depth > h.HintMaxDepth {
		depth = h.HintMaxDepth
	}

	col, score, err := h.Sessions.Hint(gameID, piece, depth)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, hintResponse{Column: col, Score: score, Depth: depth})
}

// Resign ends the game in the opponent's favor.
func (h *GameHandler) Resign(c *gin.Context) {
	gameID, piece, ok := h.seatFromContext(c)
	if !ok {
		return
	}

	if err := h.Sessions.Resign(gameID, piece, h.Notifier); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "resigned"})
}

// seatFromContext reads the authenticated seat and checks it against the
// route's game ID.
func (h *GameHandler) seatFromContext(c *gin.Context) (string, domain.PlayerID, bool) {
	gameID := c.GetString(middleware.ContextGameID)
	piece, _ := c.MustGet(middleware.ContextPlayer).(domain.PlayerID)

	if gameID == "" || gameID != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "token does not match game"})
		return "", domain.Empty, false
	}
	return gameID, piece, true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidMove):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrColumnFull),
		errors.Is(err, domain.ErrNotYourTurn),
		errors.Is(err, domain.ErrGameFinished),
		errors.Is(err, domain.ErrGameFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
