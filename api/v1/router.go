package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cdc_zoning/api/v1/aliases"
	"cdc_zoning/api/v1/auth"
	"cdc_zoning/api/v1/dashboard"
	"cdc_zoning/api/v1/logs"
	"cdc_zoning/api/v1/middleware"
	"cdc_zoning/api/v1/nodes"
	"cdc_zoning/api/v1/zoneconfig"
	"cdc_zoning/api/v1/zonegroups"
	"cdc_zoning/api/v1/zones"
	internalauth "cdc_zoning/internal/auth"
	"cdc_zoning/internal/audit"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/zoning"
)

// Deps are the services behind the API. A nil Issuer disables login and token checks.
type Deps struct {
	Coordinator *zoning.Coordinator
	Logs        audit.Log
	Issuer      *internalauth.Issuer
	Credentials internalauth.Credentials
	Log         *logrus.Entry
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps Deps) {
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RequestID(), middleware.AccessLog(deps.Log.WithField("component", "api")))
	{
		// Public routes
		v1.GET("/ping", pingHandler)
		if deps.Issuer != nil {
			v1.POST("/auth/login", auth.NewHandler(deps.Credentials, deps.Issuer).Login)
		}

		protected := v1.Group("")
		if deps.Issuer != nil {
			protected.Use(middleware.AuthRequired(deps.Issuer))
		}
		{
			protected.GET("/me", meHandler)
			protected.GET("/dashboard", dashboard.Handler(deps.Coordinator))

			aliasesHandler := aliases.NewHandler(deps.Coordinator)
			aliasesGroup := protected.Group("/aliases")
			{
				aliasesGroup.GET("", aliasesHandler.List)
				aliasesGroup.POST("/create", aliasesHandler.Create)
				aliasesGroup.POST("/delete", aliasesHandler.Delete)
			}

			zonesHandler := zones.NewHandler(deps.Coordinator)
			zonesGroup := protected.Group("/zones")
			{
				zonesGroup.GET("", zonesHandler.List)
				zonesGroup.GET("/ungrouped", zonesHandler.Ungrouped)
				zonesGroup.GET("/:name", zonesHandler.Get)
				zonesGroup.POST("/create", zonesHandler.Create)
				zonesGroup.POST("/delete", zonesHandler.Delete)
				zonesGroup.POST("/activate", zonesHandler.Activate)
				zonesGroup.POST("/deactivate", zonesHandler.Deactivate)
				zonesGroup.POST("/link", zonesHandler.Link)
				zonesGroup.POST("/unlink", zonesHandler.Unlink)
				zonesGroup.POST("/reconcile", zonesHandler.Reconcile)
			}

			groupsHandler := zonegroups.NewHandler(deps.Coordinator)
			groupsGroup := protected.Group("/zone-groups")
			{
				groupsGroup.GET("", groupsHandler.List)
				groupsGroup.POST("/create", groupsHandler.Create)
				groupsGroup.POST("/delete", groupsHandler.Delete)
				groupsGroup.POST("/add-zones", groupsHandler.AddZones)
				groupsGroup.POST("/remove-zones", groupsHandler.RemoveZones)
			}

			configHandler := zoneconfig.NewHandler(deps.Coordinator)
			protected.GET("/zone-config", configHandler.Get)
			protected.POST("/zone-config/regenerate", configHandler.Regenerate)

			nodesHandler := nodes.NewHandler(deps.Coordinator)
			nodesGroup := protected.Group("/nodes")
			{
				nodesGroup.GET("", nodesHandler.List)
				nodesGroup.PUT("", nodesHandler.Replace)
				nodesGroup.POST("/sync", nodesHandler.Sync)
			}

			if deps.Logs != nil {
				protected.GET("/logs", logs.NewHandler(deps.Logs).List)
			}
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns the authenticated user, empty when auth is disabled
func meHandler(c *gin.Context) {
	username, _ := c.Get(middleware.UsernameKey)
	httpx.OK(c, gin.H{
		"username": username,
	})
}
