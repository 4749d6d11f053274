package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ShareTokenService signs short-lived tokens that let a finished match's
// replay be shared with players outside the match.
type ShareTokenService struct {
	secret string
	issuer string
	ttl    time.Duration
}

const defaultShareTokenTTL = 72 * time.Hour

func NewShareTokenService(secret, issuer string, ttl time.Duration) *ShareTokenService {
	if ttl <= 0 {
		ttl = defaultShareTokenTTL
	}
	return &ShareTokenService{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateToken issues a replay share token for the given match.
func (s *ShareTokenService) GenerateToken(userID, matchID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("share token service is nil")
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if matchID == "" {
		return "", fmt.Errorf("match id is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("share token config is incomplete")
	}

	claims := jwt.MapClaims{
		"iss":   s.issuer,
		"sub":   userID,
		"exp":   time.Now().Add(s.ttl).Unix(),
		"match": matchID,
		"jti":   fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken checks a share token and returns the match it grants
// access to.
func (s *ShareTokenService) VerifyToken(tokenString string) (string, error) {
	if s == nil || s.secret == "" {
		return "", fmt.Errorf("share token config is incomplete")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid share token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid share token claims")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return "", fmt.Errorf("share token issuer mismatch")
	}
	matchID, _ := claims["match"].(string)
	if matchID == "" {
		return "", fmt.Errorf("share token carries no match")
	}
	return matchID, nil
}
