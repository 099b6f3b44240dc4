package app

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"

	"go-leave/internal/balance"
	"go-leave/internal/employee"
	"go-leave/internal/holiday"
	"go-leave/internal/identity"
	"go-leave/internal/leaverequest"
	"go-leave/internal/leavetype"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	leaveRequestRepo := leaverequest.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC + identity ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("internal", "rbac", "infra", "model.conf"),
		filepath.Join("internal", "rbac", "infra", "policy.csv"),
	)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)
	provider := identity.NewJWTProvider(os.Getenv("JWT_SECRET"))

	graceDays := 0
	if v := os.Getenv("LEAVE_GRACE_DAYS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		graceDays = parsed
	}

	// --- Services ---
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo)
	balanceService := balance.NewService(db, balanceRepo, leaveTypeRepo)
	leaveRequestService := leaverequest.NewServiceWithOutbox(
		db,
		leaveRequestRepo,
		balanceService,
		outboxRepo,
		leaverequest.Config{GraceDays: graceDays},
	)
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, outboxRepo, rdb)
	holidayService := holiday.NewService(db, holidayRepo)

	// --- Handlers ---
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	balanceHandler := balance.NewHandler(balanceService)
	leaveRequestHandler := leaverequest.NewHandler(leaveRequestService)
	employeeHandler := employee.NewHandler(employeeService)
	holidayHandler := holiday.NewHandler(holidayService)

	// --- Routes ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		leavetype.RegisterRoutes(api, leaveTypeHandler, provider, rbacService)
		balance.RegisterRoutes(api, balanceHandler, provider, rbacService)
		leaverequest.RegisterRoutes(api, leaveRequestHandler, provider, rbacService, rdb)
		employee.RegisterRoutes(api, employeeHandler, provider, rbacService)
		holiday.RegisterRoutes(api, holidayHandler, provider, rbacService)
	}

	return nil
}
