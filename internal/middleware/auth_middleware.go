package middleware

import (
	"net/http"
	"strings"

	"go-leave/internal/identity"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token (or access_token cookie) through
// the identity provider and stores the verified identity on the context under
// "employee_id" and "role".
func AuthMiddleware(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found", nil)
			c.Abort()
			return
		}

		id, err := provider.Verify(c.Request.Context(), tokenString)
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		c.Set("employee_id", id.EmployeeID)
		c.Set("role", id.Role)

		ctx := contextutil.WithEmployeeID(c.Request.Context(), id.EmployeeID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
