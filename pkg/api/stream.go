package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/devwatch/sentinel/pkg/models"
)

// StreamMessage is the frame pushed to websocket dashboard clients
type StreamMessage struct {
	Type      string        `json:"type"` // "alert", "ping"
	Alert     *models.Alert `json:"alert,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Hub fans new alerts out to connected dashboard clients. Slow or dead
// clients are dropped rather than allowed to block the ingest path.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	log     *logrus.Logger
}

// NewHub creates an empty hub
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		log:     log,
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	_ = conn.Close()
}

// Broadcast pushes an alert to every connected client
func (h *Hub) Broadcast(alert *models.Alert) {
	msg := StreamMessage{
		Type:      "alert",
		Alert:     alert,
		Timestamp: time.Now(),
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			h.log.WithError(err).Debug("dropping websocket client")
			h.remove(conn)
		}
	}
}

// ClientCount reports connected clients, for tests and stats
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleAlertStream upgrades the connection and registers the client.
// The read loop only consumes control frames; clients are write-only
// from the server's perspective.
func (s *Server) handleAlertStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(*http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	s.hub.add(conn)
	s.logger.WithField("remote", conn.RemoteAddr().String()).Debug("alert stream client connected")

	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
