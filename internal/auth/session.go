package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL bounds how long a session cookie stays valid.
const SessionTTL = 30 * 24 * time.Hour

// SessionClaims is the identity carried by the session cookie.
type SessionClaims struct {
	Username   string `json:"username"`
	Name       string `json:"name,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
	AuthMethod string `json:"auth_method,omitempty"`
	jwt.RegisteredClaims
}

// IssueSession signs c with the session secret.
func IssueSession(secret string, c SessionClaims) (string, error) {
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(SessionTTL))
	c.IssuedAt = jwt.NewNumericDate(time.Now())
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// ParseSession validates tokenStr and returns its claims.
func ParseSession(secret, tokenStr string) (*SessionClaims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := t.Claims.(*SessionClaims); ok && t.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
