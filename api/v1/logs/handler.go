package logs

import (
	"github.com/gin-gonic/gin"

	"cdc_zoning/internal/audit"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/model"
)

// ListRequest represents list operation logs request
type ListRequest struct {
	Operation string `form:"operation"`
	Failed    bool   `form:"failed"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// Handler handles the operation log API
type Handler struct {
	log audit.Log
}

// NewHandler creates a new operation log handler
func NewHandler(log audit.Log) *Handler {
	return &Handler{log: log}
}

// List handles GET /api/v1/logs, newest first
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	items, err := h.log.List(c.Request.Context(), audit.Filter{
		Operation: req.Operation,
		Failed:    req.Failed,
		Limit:     req.Limit,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrStorageError("failed to list operation logs", err))
		return
	}
	if items == nil {
		items = []model.OperationLog{}
	}
	httpx.OKItems(c, items, len(items))
}
