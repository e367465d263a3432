package attendance

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/anand05ms/Employee-tracker/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, enforcer *casbin.Enforcer) {
	employee := r.Group("/employee")
	employee.Use(middleware.AuthMiddleware())
	{
		employee.POST("/check-in", middleware.Authorize(enforcer, "attendance", "create"), h.CheckIn)
		employee.POST("/check-out", middleware.Authorize(enforcer, "attendance", "create"), h.CheckOut)
		// Devices report every few seconds; cap the rate per employee.
		employee.POST("/location",
			middleware.Authorize(enforcer, "attendance", "create"),
			middleware.RateLimitByEmployee(rate.Limit(2), 10),
			h.UpdateLocation,
		)
		employee.GET("/status", middleware.Authorize(enforcer, "attendance", "read"), h.Status)
		employee.GET("/attendance", middleware.Authorize(enforcer, "attendance", "read"), h.History)
	}
}
