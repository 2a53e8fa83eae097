package simulator

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/model"
)

// APIPrefix is the path prefix of the device API
const APIPrefix = "/cdc/api/v1"

// Handler serves the device API
type Handler struct {
	device *Device
	log    *logrus.Entry
}

// NewHandler creates a new handler
func NewHandler(device *Device, log *logrus.Entry) *Handler {
	return &Handler{device: device, log: log.WithField("component", "simulator")}
}

// AliasRequest is the optional body of an alias create
type AliasRequest struct {
	Type string `json:"type"`
	IP   string `json:"ip"`
	NQN  string `json:"nqn"`
}

// Register mounts the device routes on r
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group(APIPrefix)
	g.POST("/zone/:name", h.create(KindZone))
	g.DELETE("/zone/:name", h.remove(KindZone))
	g.POST("/zgrp/:name", h.create(KindZoneGroup))
	g.DELETE("/zgrp/:name", h.remove(KindZoneGroup))
	g.POST("/alias/:name", h.createAlias)
	g.DELETE("/alias/:name", h.deleteAlias)

	g.GET("/zones", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"zones": h.device.Names(KindZone)})
	})
	g.GET("/zgrps", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"zone_groups": h.device.Names(KindZoneGroup)})
	})
	g.GET("/aliases", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"aliases": h.device.Aliases()})
	})
	g.GET("/nvmenodes", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.NodeInventory{Nodes: h.device.Nodes()})
	})
}

func (h *Handler) create(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := h.device.Create(kind, name); err != nil {
			h.fail(c, err)
			return
		}
		h.log.WithFields(logrus.Fields{"kind": kind, "name": name}).Info("Created")
		c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("%s '%s' created successfully", label(kind), name)})
	}
}

func (h *Handler) remove(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := h.device.Delete(kind, name); err != nil {
			h.fail(c, err)
			return
		}
		h.log.WithFields(logrus.Fields{"kind": kind, "name": name}).Info("Deleted")
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s '%s' deleted successfully", label(kind), name)})
	}
}

func (h *Handler) createAlias(c *gin.Context) {
	var req AliasRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alias body: " + err.Error()})
		return
	}
	name := c.Param("name")
	if err := h.device.CreateAlias(model.AliasRecord{Name: name, Type: req.Type, IP: req.IP, NQN: req.NQN}); err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithField("name", name).Info("Alias created")
	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("Alias '%s' created", name)})
}

func (h *Handler) deleteAlias(c *gin.Context) {
	name := c.Param("name")
	if err := h.device.DeleteAlias(name); err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithField("name", name).Info("Alias deleted")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Alias '%s' deleted", name)})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, ErrMissing) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func label(kind string) string {
	if kind == KindZoneGroup {
		return "Zone Group"
	}
	return "Zone"
}
