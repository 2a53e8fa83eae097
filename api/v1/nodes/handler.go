package nodes

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"cdc_zoning/api/v1/apierr"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/model"
	"cdc_zoning/internal/zoning"
)

// Handler handles the registered node inventory API
type Handler struct {
	coord *zoning.Coordinator
}

// NewHandler creates a new nodes handler
func NewHandler(coord *zoning.Coordinator) *Handler {
	return &Handler{coord: coord}
}

// List handles GET /api/v1/nodes
func (h *Handler) List(c *gin.Context) {
	nodes, err := h.coord.Nodes(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	if nodes == nil {
		nodes = []model.RegisteredNode{}
	}
	httpx.OKItems(c, nodes, len(nodes))
}

// Replace handles PUT /api/v1/nodes. The inventory is stored as given; no
// alias or zone is touched.
func (h *Handler) Replace(c *gin.Context) {
	var inv model.NodeInventory
	if err := c.ShouldBindJSON(&inv); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	if inv.Nodes == nil {
		inv.Nodes = []model.RegisteredNode{}
	}
	if err := h.coord.ReplaceNodes(c.Request.Context(), inv.Nodes); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Node inventory replaced with %d nodes", len(inv.Nodes)), nil)
}

// Sync handles POST /api/v1/nodes/sync. A body of the form {"nodes": [...]}
// is applied as given; without a body the inventory is fetched from the registry.
func (h *Handler) Sync(c *gin.Context) {
	var (
		result zoning.SyncResult
		err    error
	)
	if c.Request.ContentLength == 0 {
		result, err = h.coord.SyncFromRegistry(c.Request.Context())
	} else {
		var inv model.NodeInventory
		if bindErr := c.ShouldBindJSON(&inv); bindErr != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid(bindErr.Error()))
			return
		}
		result, err = h.coord.SyncNodes(c.Request.Context(), inv.Nodes)
	}
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, "Nodes synchronised", result)
}
