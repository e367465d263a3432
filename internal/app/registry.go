package app

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/anand05ms/Employee-tracker/internal/attendance"
	"github.com/anand05ms/Employee-tracker/internal/broadcast"
	"github.com/anand05ms/Employee-tracker/internal/dashboard"
	"github.com/anand05ms/Employee-tracker/internal/directory"
	"github.com/anand05ms/Employee-tracker/internal/history"
	"github.com/anand05ms/Employee-tracker/internal/middleware"
	"github.com/anand05ms/Employee-tracker/internal/rbac/infra"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
	store *attendance.Store,
	hub *broadcast.Hub,
	writer *history.Writer,
	historyRepo history.Repository,
	engineCfg attendance.EngineConfig,
) error {
	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("internal", "rbac", "infra", "model.conf"),
		filepath.Join("internal", "rbac", "infra", "policy.csv"),
	)
	if err != nil {
		return err
	}

	// --- Repositories ---
	archiveRepo := attendance.NewArchiveRepository(gormDB)
	employeeDir := directory.NewGormDirectory(gormDB)

	// --- Services ---
	attendanceService := attendance.NewService(store, archiveRepo, writer, hub, engineCfg)
	dashboardService := dashboard.NewService(store, archiveRepo, employeeDir, writer, historyRepo, rdb, engineCfg.Timezone)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	broadcastHandler := broadcast.NewHandler(hub)
	dashboardHandler := dashboard.NewHandler(dashboardService)

	// --- Routes Registration ---
	router.Use(middleware.RequestContext(nil))

	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, enforcer)
		broadcast.RegisterRoutes(api, broadcastHandler, enforcer)
		dashboard.RegisterRoutes(api, dashboardHandler, enforcer)
	}

	return nil
}
