package punch

import (
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authzService authz.Service) {
	punches := r.Group("/punches")
	punches.Use(middleware.AuthMiddleware())
	{
		punches.POST("/ingest", middleware.Authorize(authzService, authz.OpPunchIngest, authz.RelAny), h.Ingest)
	}
}
