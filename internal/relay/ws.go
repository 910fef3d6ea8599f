package relay

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/your-org/alert-relay/pkg/bus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards may be served from a different origin than the relay.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades a dashboard connection and registers it with the
// hub. The server only pushes events; client frames carry no application
// messages and the read side exists to detect disconnects.
func (h *HTTPHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := h.hub.Register()
	if session == nil {
		conn.Close()
		return
	}

	go h.writePump(conn, session)
	go h.readPump(conn, session)
}

// writePump forwards bus events to the connection and keeps it alive with
// pings. It exits when the session's event channel is closed or a write fails.
func (h *HTTPHandler) writePump(conn *websocket.Conn, session *bus.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.hub.Unregister(session)
		conn.Close()
	}()

	for {
		select {
		case env, ok := <-session.Events():
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				h.logger.Debug("websocket write failed",
					zap.String("session_id", session.ID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and unregisters the session when the
// connection drops.
func (h *HTTPHandler) readPump(conn *websocket.Conn, session *bus.Session) {
	defer func() {
		h.hub.Unregister(session)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
