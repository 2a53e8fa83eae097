package zoneconfig

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cdc_zoning/api/v1/apierr"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/storage"
	"cdc_zoning/internal/zoning"
)

// Handler handles the zone config API
type Handler struct {
	coord *zoning.Coordinator
}

// NewHandler creates a new zone config handler
func NewHandler(coord *zoning.Coordinator) *Handler {
	return &Handler{coord: coord}
}

// Get handles GET /api/v1/zone-config. With ?format=yaml the bare config is
// returned as YAML instead of the JSON envelope.
func (h *Handler) Get(c *gin.Context) {
	cfg, err := h.coord.ZoneConfig(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		httpx.OK(c, cfg)
	case "yaml":
		out, err := storage.EncodeYAML(cfg)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to encode zone config", err))
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
	default:
		httpx.FailErr(c, httpx.ErrParamIllegal("format must be json or yaml"))
	}
}

// Regenerate handles POST /api/v1/zone-config/regenerate
func (h *Handler) Regenerate(c *gin.Context) {
	cfg, err := h.coord.Regenerate(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}
	httpx.OKMsg(c, "Zone configuration regenerated", cfg)
}
