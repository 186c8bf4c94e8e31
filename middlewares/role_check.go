package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/utils"
)

// RequireRole restricts a route group to the given role; admin always passes.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		staffRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if staffRole != role && staffRole != "admin" {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", role))
			c.Abort()
			return
		}

		c.Next()
	}
}
