package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// GrantService mints and verifies join grants: short-lived signed tokens
// binding a player name to one game, handed out by the find/create calls and
// checked again at match join so a stolen game id alone is not enough to
// claim a seat.
type GrantService struct {
	secret string
	issuer string
	ttl    time.Duration
}

func NewGrantService(secret, issuer string, ttl time.Duration) *GrantService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GrantService{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateGrant signs a join grant for playerName on gameID.
func (s *GrantService) GenerateGrant(gameID, playerName string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("grant service is nil")
	}
	if gameID == "" || playerName == "" {
		return "", fmt.Errorf("game id and player name are required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("grant config is incomplete")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": playerName,
		"gid": gameID,
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyGrant checks the signature and expiry and returns the bound game id
// and player name.
func (s *GrantService) VerifyGrant(tokenString string) (gameID, playerName string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parsing join grant: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("join grant is invalid")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return "", "", fmt.Errorf("join grant issued by %q", iss)
	}
	gameID, _ = claims["gid"].(string)
	playerName, _ = claims["sub"].(string)
	if gameID == "" || playerName == "" {
		return "", "", fmt.Errorf("join grant is missing its binding")
	}
	return gameID, playerName, nil
}
