package middleware

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/careops/dietary-golang/internal/auth"
	"github.com/careops/dietary-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token, loads the caller's role and puts
// both userID and userRole on the context. Handlers derive capability sets
// from the role; nothing downstream reads session state.
func AuthMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}
		tokenString := parts[1]

		// 2. --- Validate Token ---
		userID, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 3. --- Load the caller's role ---
		var role string
		err = db.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			c.Abort()
			return
		}

		// 4. --- Success ---
		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	}
}

// ManagerMiddleware restricts a route group to managers. It must run after
// AuthMiddleware, which already resolved the role.
func ManagerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role_raw, exists := c.Get("userRole")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Role not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}

		if role_raw.(string) != models.RoleManager {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: Manager role required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
