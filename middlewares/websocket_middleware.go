package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/utils"
)

// WebSocketAuthMiddleware authenticates event-stream connections via a token
// query parameter, since browsers cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("staff_id", claims.StaffID)

		c.Next()
	}
}
