package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	redisrepo "github.com/dropfour/backend/internal/repository/redis"
	"github.com/dropfour/backend/internal/service/bot"
)

type LeaderboardHandler struct {
	Cache *redisrepo.Cache
}

func NewLeaderboardHandler(cache *redisrepo.Cache) *LeaderboardHandler {
	return &LeaderboardHandler{Cache: cache}
}

// GetLeaderboard returns the human-vs-bot tallies per difficulty.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	out := gin.H{}
	for _, difficulty := range []string{bot.DifficultyEasy, bot.DifficultyMedium, bot.DifficultyHard} {
		tallies, err := h.Cache.BotLeaderboard(ctx, difficulty)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read leaderboard"})
			return
		}
		out[difficulty] = tallies
	}

	c.JSON(http.StatusOK, out)
}
