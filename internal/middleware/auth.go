package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"freelance/internal/domain"
)

// Context keys set by Auth.
const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

// Auth returns middleware that requires a valid bearer token and attaches
// the caller's identity to the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization format"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			msg := "Token verification failed"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired, please log in again"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
			return
		}

		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		if userID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token verification failed"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// RequireRoles returns middleware that rejects callers whose role is not
// in the allowed set. Must run after Auth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access Denied. You do not have permission."})
			return
		}
		c.Next()
	}
}
