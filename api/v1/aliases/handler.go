package aliases

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"cdc_zoning/api/v1/apierr"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/model"
	"cdc_zoning/internal/zoning"
)

// CreateRequest represents create alias request
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
	IP   string `json:"ip"`
	NQN  string `json:"nqn"`
}

// DeleteRequest represents delete alias request
type DeleteRequest struct {
	Name string `json:"name" binding:"required"`
}

// Handler handles aliases API
type Handler struct {
	coord *zoning.Coordinator
}

// NewHandler creates a new aliases handler
func NewHandler(coord *zoning.Coordinator) *Handler {
	return &Handler{coord: coord}
}

// List handles GET /api/v1/aliases
func (h *Handler) List(c *gin.Context) {
	items, err := h.coord.ListAliases(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	if items == nil {
		items = []zoning.Alias{}
	}
	httpx.OKItems(c, items, len(items))
}

// Create handles POST /api/v1/aliases/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("name is required"))
		return
	}
	if req.Type == "" {
		req.Type = model.DevTypeHostPort
	}

	alias, err := h.coord.CreateAlias(c.Request.Context(), req.Name, req.Type, req.IP, req.NQN)
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.Created(c, fmt.Sprintf("Alias %s created", alias.Name), alias)
}

// Delete handles POST /api/v1/aliases/delete
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("name is required"))
		return
	}
	if err := h.coord.DeleteAlias(c.Request.Context(), req.Name); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Alias %s deleted", req.Name), nil)
}
