package attendance

import (
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// The route gates use the weakest relationship that could legitimately
// reach the endpoint; the service re-derives the real relationship per
// record and enforces the fine-grained rules.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, authzService authz.Service) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.GET("", middleware.Authorize(authzService, authz.OpAttendanceRead, authz.RelOwn), h.List)
		attendances.POST("", middleware.Authorize(authzService, authz.OpAttendanceMark, authz.RelOwn), h.Mark)
		attendances.PATCH("/:id", middleware.Authorize(authzService, authz.OpAttendanceUpdate, authz.RelAny), h.Update)
		attendances.POST("/lock", middleware.Authorize(authzService, authz.OpAttendanceLock, authz.RelAny), h.LockMonth)
	}
}
