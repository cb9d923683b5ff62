package remote

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenAuth signs session tokens with HS256.
type tokenAuth struct {
	secret []byte
	ttl    time.Duration
}

func newTokenAuth(secret string, ttl time.Duration) *tokenAuth {
	return &tokenAuth{secret: []byte(secret), ttl: ttl}
}

func (a *tokenAuth) issue(s Session) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": s.ID,
		"typ": s.Type.String(),
		"exp": now.Add(a.ttl).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// sessionID validates token and returns the session id it carries.
func (a *tokenAuth) sessionID(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("token carries no session")
	}
	return sid, nil
}
