package balance

import (
	"go-leave/internal/identity"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	provider identity.Provider,
	rbacService rbac.Service,
) {
	balances := r.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware(provider))
	{
		balances.GET("/:employeeId", middleware.RBACAuthorize(rbacService, "leave-balance", "read"), handler.GetByEmployee)
		balances.PATCH("/:id", middleware.RBACAuthorize(rbacService, "leave-balance", "adjust"), handler.Adjust)
	}
}
