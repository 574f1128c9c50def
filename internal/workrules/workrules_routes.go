package workrules

import (
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authzService authz.Service) {
	rules := r.Group("/work-rules")
	rules.Use(middleware.AuthMiddleware())
	{
		rules.GET("", middleware.Authorize(authzService, authz.OpWorkRulesRead, authz.RelAny), h.Get)
		rules.PUT("", middleware.Authorize(authzService, authz.OpWorkRulesUpdate, authz.RelAny), h.Update)
	}
}
