package middleware

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"github.com/anand05ms/Employee-tracker/internal/shared/apperror"
	"github.com/anand05ms/Employee-tracker/internal/shared/response"
)

// Authorize checks the caller's role against the static policy for the
// given resource and action. Policy administration is external; the
// enforcer only reads the committed model and policy files.
func Authorize(enforcer *casbin.Enforcer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToUpper(strings.TrimSpace(c.GetString("role")))
		if role == "" {
			httpErr := apperror.ToHTTP(apperror.ErrForbidden)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		allowed, err := enforcer.Enforce(role, resource, action)
		if err != nil || !allowed {
			httpErr := apperror.ToHTTP(apperror.ErrForbidden)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
