package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// playerClaims binds a token to one player in one game.
type playerClaims struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// issueToken mints a signed token for the player. Tokens are scoped to a
// single game and expire well after any plausible session.
func issueToken(secret []byte, gameID, playerID uuid.UUID) (string, error) {
	claims := playerClaims{
		GameID:   gameID.String(),
		PlayerID: playerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseToken validates the token and returns the game and player it is
// scoped to.
func parseToken(secret []byte, token string) (gameID, playerID uuid.UUID, err error) {
	var claims playerClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if !parsed.Valid {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid token")
	}
	gameID, err = uuid.Parse(claims.GameID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("bad game id in token: %w", err)
	}
	playerID, err = uuid.Parse(claims.PlayerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("bad player id in token: %w", err)
	}
	return gameID, playerID, nil
}
