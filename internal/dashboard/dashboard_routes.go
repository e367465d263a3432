package dashboard

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"github.com/anand05ms/Employee-tracker/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, enforcer *casbin.Enforcer) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.Authorize(enforcer, "dashboard", "read"))
	{
		admin.GET("/employees", h.ListEmployees)
		admin.GET("/checked-in-employees", h.CheckedIn)
		admin.GET("/reached-employees", h.Reached)
		admin.GET("/checked-out-employees", h.CheckedOut)
		admin.GET("/not-checked-in-employees", h.NotCheckedIn)
		admin.GET("/dashboard-stats", h.Stats)
		admin.GET("/employees/:id/locations", h.EmployeeLocations)
		admin.GET("/employees/:id/attendance", h.EmployeeAttendance)
	}
}
