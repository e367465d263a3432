package broadcast

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"github.com/anand05ms/Employee-tracker/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, enforcer *casbin.Enforcer) {
	status := r.Group("/status")
	status.Use(middleware.AuthMiddleware())
	{
		status.GET("/stream", middleware.Authorize(enforcer, "stream", "read"), h.Stream)
	}
}
