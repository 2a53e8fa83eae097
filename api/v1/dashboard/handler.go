package dashboard

import (
	"github.com/gin-gonic/gin"

	"cdc_zoning/api/v1/apierr"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/zoning"
)

// Handler serves GET /api/v1/dashboard
func Handler(coord *zoning.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := coord.Dashboard(c.Request.Context())
		if err != nil {
			httpx.FailErr(c, apierr.From(err))
			return
		}
		httpx.OK(c, d)
	}
}
