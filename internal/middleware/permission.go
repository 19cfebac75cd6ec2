package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/metrics"
	"github.com/studyhub/studyhub/pkg/response"
)

// RequireAdmin lets only admin callers through. Admins skip the approval
// checks applied to regular users.
func RequireAdmin() gin.HandlerFunc {
	return guard("admin", func(caller Caller) bool {
		return caller.IsAdmin()
	})
}

// RequireApprovedActive lets through callers whose account has been approved
// and is still active. Admins always pass.
func RequireApprovedActive() gin.HandlerFunc {
	return guard("approved_active", func(caller Caller) bool {
		return caller.IsAdmin() || (caller.Approved && caller.Active)
	})
}

func guard(name string, allow func(Caller) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			metrics.AccessChecks.WithLabelValues(name, "unauthenticated").Inc()
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allow(caller) {
			metrics.AccessChecks.WithLabelValues(name, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		metrics.AccessChecks.WithLabelValues(name, "allowed").Inc()
		c.Next()
	}
}
