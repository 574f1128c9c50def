package leave

import (
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authzService authz.Service) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("", middleware.Authorize(authzService, authz.OpLeaveRead, authz.RelOwn), h.List)
		leaves.GET("/balances", middleware.Authorize(authzService, authz.OpLeaveRead, authz.RelOwn), h.Balances)
		leaves.GET("/:id", middleware.Authorize(authzService, authz.OpLeaveRead, authz.RelOwn), h.GetByID)
		leaves.POST("", middleware.Authorize(authzService, authz.OpLeaveSubmit, authz.RelOwn), h.Submit)
		leaves.PUT("/:id", middleware.Authorize(authzService, authz.OpLeaveSubmit, authz.RelOwn), h.Update)
		leaves.DELETE("/:id", middleware.Authorize(authzService, authz.OpLeaveDelete, authz.RelOwn), h.Delete)
		leaves.POST("/:id/manager-decision", middleware.Authorize(authzService, authz.OpLeaveDecideManager, authz.RelSubordinate), h.DecideManager)
		leaves.POST("/:id/final-decision", middleware.Authorize(authzService, authz.OpLeaveDecideFinal, authz.RelAny), h.DecideFinal)
		leaves.POST("/:id/cancel", middleware.Authorize(authzService, authz.OpLeaveCancel, authz.RelOwn), h.Cancel)
		leaves.POST("/:id/withdraw", middleware.Authorize(authzService, authz.OpLeaveCancel, authz.RelOwn), h.Withdraw)
	}
}
