package middleware

import (
	"net/http"

	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// ActorFromContext rebuilds the authenticated actor set by AuthMiddleware.
func ActorFromContext(c *gin.Context) authz.Actor {
	return authz.Actor{
		EmployeeID: c.GetString("employee_id"),
		CompanyID:  c.GetString("company_id"),
		Role:       c.GetString("role"),
	}
}

// Authorize gates a route on the policy table for the coarse relationship
// the route implies. Finer, per-record relationships are re-checked in the
// services where the record (and its owner) is known.
func Authorize(service authz.Service, operation string, rel authz.Relationship) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor.EmployeeID == "" || actor.CompanyID == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Allowed(actor, operation, rel)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
			c.Abort()
			return
		}
		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "forbidden", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
