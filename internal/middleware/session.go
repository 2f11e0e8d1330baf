package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "signupform"

// RefreshedTokenHeader carries a replacement token once the current one is
// past half its lifetime.
const RefreshedTokenHeader = "X-Session-Token"

// SessionMiddleware issues and checks the signed tokens that identify a
// sign-up session.
type SessionMiddleware struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionMiddleware(secret string, ttl time.Duration) *SessionMiddleware {
	if secret == "" {
		secret = "change-me"
	}
	return &SessionMiddleware{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for sessionID and returns it with its expiry.
func (m *SessionMiddleware) Issue(sessionID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   sessionID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a token and returns the session it names.
func (m *SessionMiddleware) Parse(tokenString string) (uuid.UUID, error) {
	claims, err := m.parseClaims(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

func (m *SessionMiddleware) parseClaims(tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// needsRefresh reports whether less than half of the TTL is left.
func (m *SessionMiddleware) needsRefresh(claims *jwt.RegisteredClaims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) < m.ttl/2
}

func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (browsers can't set headers on websockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
			return
		}

		claims, err := m.parseClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session token"})
			return
		}
		sessionID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session token"})
			return
		}

		// Active sessions slide: the client swaps in the token from this header.
		if m.needsRefresh(claims) {
			if fresh, _, err := m.Issue(sessionID); err == nil {
				c.Header(RefreshedTokenHeader, fresh)
			}
		}

		c.Set("session_id", sessionID.String())
		c.Next()
	}
}
