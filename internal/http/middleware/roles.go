package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkaryagin/freelance-market/internal/models"
)

// RequireAdmin пропускает только администраторов.
// Ставится после AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRoleKey)
		if role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "доступ только для администраторов"})
			return
		}
		c.Next()
	}
}
