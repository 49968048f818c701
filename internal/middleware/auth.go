package middleware

import (
	"net/http"
	"strings"

	"mailassign-be/config"
	"mailassign-be/internal/models"
	"mailassign-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token and exposes the caller's user
// and account ids to downstream handlers.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing Authorization header",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil || claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("accountID", claims.AccountID)
		c.Next()
	}
}
