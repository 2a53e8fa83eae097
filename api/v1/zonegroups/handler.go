package zonegroups

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"cdc_zoning/api/v1/apierr"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/zoning"
)

// NameRequest names one zone group
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ZonesRequest names a zone group and the zones to add or remove
type ZonesRequest struct {
	Group string   `json:"group" binding:"required"`
	Zones []string `json:"zones" binding:"required,min=1"`
}

// Handler handles zone groups API
type Handler struct {
	coord *zoning.Coordinator
}

// NewHandler creates a new zone groups handler
func NewHandler(coord *zoning.Coordinator) *Handler {
	return &Handler{coord: coord}
}

// List handles GET /api/v1/zone-groups
func (h *Handler) List(c *gin.Context) {
	items, err := h.coord.ListGroups(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	if items == nil {
		items = []zoning.GroupView{}
	}
	httpx.OKItems(c, items, len(items))
}

// Create handles POST /api/v1/zone-groups/create
func (h *Handler) Create(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("name is required"))
		return
	}
	g, err := h.coord.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.Created(c, fmt.Sprintf("Zone group %s created", g.Name), gin.H{"id": g.ID, "name": g.Name})
}

// Delete handles POST /api/v1/zone-groups/delete
func (h *Handler) Delete(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("name is required"))
		return
	}
	if err := h.coord.DeleteGroup(c.Request.Context(), req.Name); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Zone group %s deleted", req.Name), nil)
}

// AddZones handles POST /api/v1/zone-groups/add-zones
func (h *Handler) AddZones(c *gin.Context) {
	var req ZonesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("group and zones are required"))
		return
	}
	if err := h.coord.AddZonesToGroup(c.Request.Context(), req.Group, req.Zones...); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Zones added to group %s", req.Group), gin.H{"zones": req.Zones})
}

// RemoveZones handles POST /api/v1/zone-groups/remove-zones
func (h *Handler) RemoveZones(c *gin.Context) {
	var req ZonesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("group and zones are required"))
		return
	}
	if err := h.coord.RemoveZonesFromGroup(c.Request.Context(), req.Group, req.Zones...); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Zones removed from group %s", req.Group), gin.H{"zones": req.Zones})
}
