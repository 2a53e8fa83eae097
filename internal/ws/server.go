package ws

import (
	"context"
	"net/http"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/model"
)

// Socket.IO events
const (
	EventConnected         = "connected"
	EventZoneConfigUpdate  = "zone_config:update"
	EventRequestZoneConfig = "request:zone_config"
)

// ConfigSource returns the current zone config
type ConfigSource func(ctx context.Context) (*model.ZoneConfig, error)

// Hub pushes zone config updates to connected consoles. It implements zoning.Notifier.
type Hub struct {
	server *socketio.Server
	source ConfigSource
	log    *logrus.Entry
}

// NewHub creates the Socket.IO server
func NewHub(source ConfigSource, log *logrus.Entry) *Hub {
	allowAll := func(r *http.Request) bool { return true }
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: allowAll},
			&websocket.Transport{CheckOrigin: allowAll},
		},
	})

	h := &Hub{server: server, source: source, log: log.WithField("component", "ws")}

	server.OnConnect("/", func(s socketio.Conn) error {
		h.log.WithField("conn", s.ID()).Info("Client connected")
		s.Emit(EventConnected, map[string]interface{}{"ok": true})
		return nil
	})
	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		h.log.WithFields(logrus.Fields{"conn": s.ID(), "reason": reason}).Info("Client disconnected")
	})
	server.OnError("/", func(s socketio.Conn, e error) {
		entry := h.log.WithError(e)
		if s != nil {
			entry = entry.WithField("conn", s.ID())
		}
		entry.Warn("Socket error")
	})
	server.OnEvent("/", EventRequestZoneConfig, h.handleRequestZoneConfig)

	return h
}

// Serve runs the Socket.IO event loop until Close is called
func (h *Hub) Serve() error {
	h.log.Info("Socket.IO server started")
	return h.server.Serve()
}

// Close stops the server
func (h *Hub) Close() error {
	return h.server.Close()
}

// ZoneConfigChanged broadcasts cfg to every connected client
func (h *Hub) ZoneConfigChanged(cfg *model.ZoneConfig) {
	if !h.server.BroadcastToNamespace("/", EventZoneConfigUpdate, cfg) {
		h.log.Debug("No namespace to broadcast zone config to")
	}
}

func (h *Hub) handleRequestZoneConfig(s socketio.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := h.source(ctx)
	if err != nil {
		h.log.WithError(err).WithField("conn", s.ID()).Warn("Failed to load zone config for client")
		s.Emit("error", map[string]interface{}{"message": "failed to load zone config"})
		return
	}
	s.Emit(EventZoneConfigUpdate, cfg)
}
