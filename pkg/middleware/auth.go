package middleware

import (
	"net/http"
	"strings"

	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionContextKey = "session"

// Claims represents JWT claims
type Claims struct {
	UserID      uuid.UUID          `json:"user_id"`
	Email       string             `json:"email"`
	AccountType models.AccountType `json:"account_type"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates JWT tokens and stores a Session in the request
// context. The raw bearer token rides along on the session so upstream API
// calls can forward it.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}
		tokenString := parts[1]

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})

		if err != nil || !token.Valid {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid token claims")
			c.Abort()
			return
		}

		c.Set(sessionContextKey, models.Session{
			UserID:      claims.UserID,
			Email:       claims.Email,
			AccountType: claims.AccountType,
			Token:       tokenString,
		})

		c.Next()
	}
}

// RequireAccountType checks the session against the allowed account types
func RequireAccountType(types ...models.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := GetSession(c)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "session not found")
			c.Abort()
			return
		}

		for _, t := range types {
			if sess.AccountType == t {
				c.Next()
				return
			}
		}

		common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// GetSession extracts the authenticated session from context
func GetSession(c *gin.Context) (models.Session, error) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return models.Session{}, common.ErrUnauthorized
	}

	sess, ok := value.(models.Session)
	if !ok {
		return models.Session{}, common.ErrUnauthorized
	}
	return sess, nil
}

// SetSession stores a session in the gin context. Exposed for tests.
func SetSession(c *gin.Context, sess models.Session) {
	c.Set(sessionContextKey, sess)
}
