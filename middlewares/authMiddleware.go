package middlewares

import (
	"fmt"
	"strings"

	"citysense-be/models"
	"citysense-be/repository"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// Context keys populated by the auth middlewares.
const (
	UserIDKey   = "user_id"
	UserEmail   = "user_email"
	UserRoleKey = "user_role"
)

// AuthMiddleware verifies the bearer token and attaches the caller's
// identity to the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Error(Unauthorized("No token provided"))
			c.Abort()
			return
		}

		tokenString := authHeader[7:]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.Error(Unauthorized("Invalid token"))
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Error(Unauthorized("Invalid token claims"))
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			c.Error(Unauthorized("Invalid token claims"))
			c.Abort()
			return
		}
		c.Set(UserIDKey, userID)
		if email, ok := claims["email"].(string); ok {
			c.Set(UserEmail, email)
		}

		c.Next()
	}
}

// RequireAdmin loads the caller's user record and rejects non-admins.
// Runs after AuthMiddleware.
func RequireAdmin(users repository.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(UserIDKey)
		if !exists {
			c.Error(Unauthorized("Authentication required"))
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID.(string))
		if err != nil {
			if err == repository.ErrNotFound || err == repository.ErrInvalidID {
				c.Error(NotFound("User not found"))
			} else {
				c.Error(Internal(err))
			}
			c.Abort()
			return
		}

		if user.Role != models.RoleAdmin {
			c.Error(Forbidden("Admin access required"))
			c.Abort()
			return
		}

		c.Set(UserRoleKey, string(user.Role))
		c.Next()
	}
}
