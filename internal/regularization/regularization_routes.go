package regularization

import (
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authzService authz.Service) {
	regularizations := r.Group("/regularizations")
	regularizations.Use(middleware.AuthMiddleware())
	{
		regularizations.GET("", middleware.Authorize(authzService, authz.OpRegularizeRequest, authz.RelOwn), h.List)
		regularizations.GET("/:id", middleware.Authorize(authzService, authz.OpRegularizeRequest, authz.RelOwn), h.GetByID)
		regularizations.POST("", middleware.Authorize(authzService, authz.OpRegularizeRequest, authz.RelOwn), h.Request)
		regularizations.POST("/:id/process", middleware.Authorize(authzService, authz.OpRegularizeProcess, authz.RelAny), h.Process)
	}
}
