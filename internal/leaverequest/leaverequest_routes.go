package leaverequest

import (
	"go-leave/internal/identity"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	provider identity.Provider,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware(provider))
	{
		requests.POST("",
			middleware.RBACAuthorize(rbacService, "leave-request", "create"),
			middleware.Idempotency(rdb),
			handler.Submit,
		)
		requests.GET("", middleware.RBACAuthorize(rbacService, "leave-request", "read"), handler.GetAll)
		requests.GET("/me", middleware.RBACAuthorize(rbacService, "leave-request", "read"), handler.GetMine)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "leave-request", "read"), handler.GetById)
		requests.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, "leave-request", "update"), handler.UpdateStatus)
	}
}
