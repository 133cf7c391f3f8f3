package notification

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"socialhub/pkg/auth"
	"socialhub/pkg/metrics"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the frontend origin; auth happens
	// at the handshake, not via origin checks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a websocket connection to the router's Conn. Writes
// are serialized because the router and the flush path may push
// concurrently on the same socket.
type wsConn struct {
	mu   sync.Mutex
	sock *websocket.Conn
}

func (c *wsConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sock.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.sock.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	return c.sock.Close()
}

// WSHandler upgrades /ws requests and ties the socket lifecycle to the
// router. Clients identify with ?userId=... or a signed token.
type WSHandler struct {
	router    *Router
	jwtSecret string
	logger    *zap.Logger
}

func NewWSHandler(router *Router, jwtSecret string, log *zap.Logger) *WSHandler {
	return &WSHandler{router: router, jwtSecret: jwtSecret, logger: log}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.Serve)
}

func (h *WSHandler) Serve(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		if token := c.Query("token"); token != "" {
			id, err := auth.ParseUserID(token, h.jwtSecret)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			userID = id
		}
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &wsConn{sock: sock}
	h.router.Connected(c.Request.Context(), userID, conn)
	metrics.LiveConnections.Inc()
	h.logger.Info("client connected", zap.String("user_id", userID))

	defer func() {
		h.router.Disconnected(userID, conn)
		metrics.LiveConnections.Dec()
		conn.Close()
		h.logger.Info("client disconnected", zap.String("user_id", userID))
	}()

	// Inbound frames are not part of the protocol; the read loop only
	// notices the peer going away.
	for {
		if _, _, err := sock.ReadMessage(); err != nil {
			return
		}
	}
}
