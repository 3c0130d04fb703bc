package server

import (
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/webchat/relay/src/hub"
	"github.com/webchat/relay/src/types"
)

// wsHandler returns the raw fasthttp handler for WebSocket upgrades. The
// session gate runs before the upgrade: a handshake without a valid
// identity is refused and no registry entry is created.
func (s *Server) wsHandler() fasthttp.RequestHandler {
	upgrader := websocket.FastHTTPUpgrader{
		ReadBufferSize:  s.cfg.ReadBufferSize,
		WriteBufferSize: s.cfg.WriteBufferSize,
		CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
			return s.cfg.OriginAllowed(string(ctx.Request.Header.Peek("Origin")))
		},
	}

	return func(ctx *fasthttp.RequestCtx) {
		upgrade := string(ctx.Request.Header.Peek("Upgrade"))
		if !strings.EqualFold(upgrade, "websocket") {
			ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
			ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
			return
		}

		identity, err := s.gate.Authenticate(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("handshake rejected")
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			ctx.SetBodyString(`{"error":"unauthorized","message":"valid session required"}`)
			return
		}

		connID := uuid.New().String()
		h := s.hub
		logger := s.logger

		err = upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
			client := hub.NewClient(connID, identity.UserID, &wsConn{conn}, h)
			h.Register(client)
			go client.WritePump()
			// Guarded send: registration can reject the client, which
			// closes its send channel.
			client.TrySend(types.Frame{Event: types.EventConnected, ConnectionID: connID})
			client.ReadPump()
		})
		if err != nil {
			logger.Error().Err(err).Msg("websocket upgrade failed")
		}
	}
}

// wsConn wraps fasthttp/websocket.Conn to satisfy types.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) WriteJSON(v any) error { return w.conn.WriteJSON(v) }
func (w *wsConn) ReadJSON(v any) error  { return w.conn.ReadJSON(v) }
func (w *wsConn) Close() error          { return w.conn.Close() }
