package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dropfour/backend/pkg/auth"
)

const (
	ContextGameID = "game_id"
	ContextPlayer = "player"
)

// PlayerAuthMiddleware validates the player token from the X-Player-Token
// header (or an Authorization bearer) and stores the claims in the request
// context. The handlers still check that the token's game matches the route.
func PlayerAuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing player token"})
			return
		}

		claims, err := issuer.ValidatePlayerToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid player token"})
			return
		}

		c.Set(ContextGameID, claims.GameID)
		c.Set(ContextPlayer, claims.Player)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if token := c.GetHeader("X-Player-Token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
