package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropfour/backend/internal/domain"
)

// PlayerClaims tie a token to one seat of one game. There are no user
// accounts: holding a valid token for (game, piece) is the whole identity.
type PlayerClaims struct {
	GameID string          `json:"gameId"`
	Player domain.PlayerID `json:"player"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 player tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// IssuePlayerToken returns a signed token granting the given seat.
func (t *TokenIssuer) IssuePlayerToken(gameID string, player domain.PlayerID) (string, error) {
	now := time.Now()
	claims := PlayerClaims{
		GameID: gameID,
		Player: player,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidatePlayerToken checks the signature and expiry and returns the claims.
func (t *TokenIssuer) ValidatePlayerToken(tokenString string) (*PlayerClaims, error) {
	claims := &PlayerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.GameID == "" || (claims.Player != domain.Player1 && claims.Player != domain.Player2) {
		return nil, fmt.Errorf("malformed player claims")
	}
	return claims, nil
}
