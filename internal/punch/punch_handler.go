package punch

import (
	"net/http"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/apperror"
	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("punch.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("punch.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Ingest(c *gin.Context) {
	var req IngestPunchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http ingest punches validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.Ingest(c.Request.Context(), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	status := http.StatusCreated
	if req.DryRun {
		status = http.StatusOK
	}
	response.Success(c, status, resp, nil)
}
