package api

import (
	"log/slog"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
)

// hostWSHandler upgrades GET /ws/meeting/:id/host/ and runs the host side
// of the session engine until the meeting ends. The session token rides in
// the query string; moving it to a cookie or subprotocol is tracked as a
// hardening item since proxies tend to log URLs.
func (s *Server) hostWSHandler(c *gin.Context) {
	conn, err := s.acceptWS(c)
	if err != nil {
		return
	}
	s.engine.ServeHost(c.Request.Context(), conn, c.Param("id"), c.Query("session"))
}

// participantWSHandler upgrades GET /ws/meeting/:id/participant/ and runs
// the participant side. The :id segment is the meeting access code;
// participants are anonymous.
func (s *Server) participantWSHandler(c *gin.Context) {
	conn, err := s.acceptWS(c)
	if err != nil {
		return
	}
	s.engine.ServeParticipant(c.Request.Context(), conn, c.Param("id"))
}

// acceptWS performs the WebSocket upgrade. Accept writes its own error
// response on failure, so callers just stop.
func (s *Server) acceptWS(c *gin.Context) (*websocket.Conn, error) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Server.AllowedWSOrigins,
	})
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "path", c.Request.URL.Path, "error", err)
		return nil, err
	}
	return conn, nil
}
