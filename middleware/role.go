package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourify/utils"
)

// RestrictTo allows only the given roles past. It must run after the
// access gate.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.AbortWithError(c, utils.NewAppError(http.StatusUnauthorized, "you are not logged in, please log in to get access"))
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		utils.AbortWithError(c, utils.NewAppError(http.StatusForbidden, "you do not have permission to perform this action"))
	}
}
