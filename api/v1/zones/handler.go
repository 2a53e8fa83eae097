package zones

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"cdc_zoning/api/v1/apierr"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/zoning"
)

// NameRequest names one zone
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// NamesRequest names several zones
type NamesRequest struct {
	Names []string `json:"names" binding:"required,min=1"`
}

// LinkRequest names a zone and the aliases to link or unlink
type LinkRequest struct {
	Zone    string   `json:"zone" binding:"required"`
	Aliases []string `json:"aliases" binding:"required,min=1"`
}

// Handler handles zones API
type Handler struct {
	coord *zoning.Coordinator
}

// NewHandler creates a new zones handler
func NewHandler(coord *zoning.Coordinator) *Handler {
	return &Handler{coord: coord}
}

// List handles GET /api/v1/zones
func (h *Handler) List(c *gin.Context) {
	items, err := h.coord.ListZones(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	if items == nil {
		items = []zoning.ZoneView{}
	}
	httpx.OKItems(c, items, len(items))
}

// Get handles GET /api/v1/zones/:name
func (h *Handler) Get(c *gin.Context) {
	zone, err := h.coord.Zone(c.Request.Context(), c.Param("name"))
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OK(c, zone)
}

// Ungrouped handles GET /api/v1/zones/ungrouped
func (h *Handler) Ungrouped(c *gin.Context) {
	items, err := h.coord.UngroupedZones(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	if items == nil {
		items = []zoning.ZoneRef{}
	}
	httpx.OKItems(c, items, len(items))
}

// Create handles POST /api/v1/zones/create
func (h *Handler) Create(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("name is required"))
		return
	}
	zone, err := h.coord.CreateZone(c.Request.Context(), req.Name)
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.Created(c, fmt.Sprintf("Zone %s created", zone.Name), gin.H{"id": zone.ID, "name": zone.Name, "active": zone.Active})
}

// Delete handles POST /api/v1/zones/delete
func (h *Handler) Delete(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("name is required"))
		return
	}
	if err := h.coord.DeleteZone(c.Request.Context(), req.Name); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Zone %s deleted", req.Name), nil)
}

// Activate handles POST /api/v1/zones/activate
func (h *Handler) Activate(c *gin.Context) {
	var req NamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("names is required"))
		return
	}
	if err := h.coord.ActivateZones(c.Request.Context(), req.Names...); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, "Zones activated", gin.H{"names": req.Names})
}

// Deactivate handles POST /api/v1/zones/deactivate
func (h *Handler) Deactivate(c *gin.Context) {
	var req NamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("names is required"))
		return
	}
	if err := h.coord.DeactivateZones(c.Request.Context(), req.Names...); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, "Zones deactivated", gin.H{"names": req.Names})
}

// Link handles POST /api/v1/zones/link
func (h *Handler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("zone and aliases are required"))
		return
	}
	if err := h.coord.LinkAliases(c.Request.Context(), req.Zone, req.Aliases...); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Aliases linked to zone %s", req.Zone), gin.H{"aliases": req.Aliases})
}

// Unlink handles POST /api/v1/zones/unlink
func (h *Handler) Unlink(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("zone and aliases are required"))
		return
	}
	if err := h.coord.UnlinkAliases(c.Request.Context(), req.Zone, req.Aliases...); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, fmt.Sprintf("Aliases unlinked from zone %s", req.Zone), gin.H{"aliases": req.Aliases})
}

// Reconcile handles POST /api/v1/zones/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	report, err := h.coord.PruneOrphans(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	if report.Orphans == nil {
		report.Orphans = []zoning.Orphan{}
	}
	httpx.OK(c, report)
}
