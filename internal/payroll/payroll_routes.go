package payroll

import (
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authzService authz.Service, rdb *redis.Client) {
	batches := r.Group("/payroll/batches")
	batches.Use(middleware.AuthMiddleware())
	{
		batches.GET("", middleware.Authorize(authzService, authz.OpPayrollRead, authz.RelAny), h.ListBatches)
		batches.GET("/:id", middleware.Authorize(authzService, authz.OpPayrollRead, authz.RelAny), h.GetBatch)
		batches.POST("",
			middleware.Authorize(authzService, authz.OpPayrollGenerate, authz.RelAny),
			middleware.Idempotency(rdb),
			h.Generate)
		batches.POST("/preview", middleware.Authorize(authzService, authz.OpPayrollGenerate, authz.RelAny), h.Preview)
		batches.POST("/:id/pay",
			middleware.Authorize(authzService, authz.OpPayrollMarkPaid, authz.RelAny),
			middleware.Idempotency(rdb),
			h.MarkPaid)
		batches.POST("/:id/cancel", middleware.Authorize(authzService, authz.OpPayrollGenerate, authz.RelAny), h.Cancel)
	}

	slips := r.Group("/payroll/slips")
	slips.Use(middleware.AuthMiddleware())
	{
		slips.GET("/:id", middleware.Authorize(authzService, authz.OpPayrollRead, authz.RelOwn), h.GetSlip)
		slips.PATCH("/:id", middleware.Authorize(authzService, authz.OpPayrollUpdateSlip, authz.RelAny), h.UpdateSlip)
	}
}
